package auth

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// messagePrefix is the first line of every signed request message.
const messagePrefix = "primary-sale"

const maxNonceLength = 64

var (
	ErrMalformedMessage = errors.New("malformed signed message")
	ErrMessageMismatch  = errors.New("signed message does not match request")
	ErrMessageExpired   = errors.New("signed message expired")
	ErrMessageReplayed  = errors.New("signed message already used")
)

func eip191Hash(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256([]byte(prefixed))
}

// VerifyEIP191Signature verifies an EIP-191 personal_sign signature
// Returns the recovered Ethereum address if valid
func VerifyEIP191Signature(message, signature string) (common.Address, error) {
	sigBytes, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(sigBytes) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: expected %d, got %d", crypto.SignatureLength, len(sigBytes))
	}

	// v may be 0, 1, 27 or 28
	if sigBytes[crypto.RecoveryIDOffset] >= 27 {
		sigBytes[crypto.RecoveryIDOffset] -= 27
	}

	pubKey, err := crypto.SigToPub(eip191Hash(message), sigBytes)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// SignEIP191 produces a personal_sign signature with v in {27, 28}.
func SignEIP191(key *ecdsa.PrivateKey, message string) (string, error) {
	sig, err := crypto.Sign(eip191Hash(message), key)
	if err != nil {
		return "", err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// RequestMessage builds the message a caller signs to authenticate one request.
// It binds the method, the path, the time, a single-use nonce and the keccak256
// hash of the request body:
//
//	primary-sale
//	POST /sale/mint
//	1700000000
//	6f1c0d7e-52b9-4c8e-9a57-0f5a3b3f2c11
//	0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470
func RequestMessage(method, path string, body []byte, nonce string, at time.Time) string {
	return fmt.Sprintf("%s\n%s %s\n%d\n%s\n%s",
		messagePrefix, strings.ToUpper(method), path, at.Unix(), nonce, BodyHash(body))
}

// BodyHash returns the 0x-prefixed keccak256 hash of a request body.
func BodyHash(body []byte) string {
	return crypto.Keccak256Hash(body).Hex()
}

// NewNonce returns a fresh request nonce.
func NewNonce() string {
	return uuid.NewString()
}

// CheckRequestMessage verifies that message was built by RequestMessage for
// this method, path and body, and that its timestamp is within maxAge of now.
func CheckRequestMessage(message, method, path string, body []byte, now time.Time, maxAge time.Duration) error {
	lines := strings.Split(message, "\n")
	if len(lines) != 5 || lines[0] != messagePrefix {
		return ErrMalformedMessage
	}
	if nonce := lines[3]; nonce == "" || len(nonce) > maxNonceLength {
		return fmt.Errorf("%w: bad nonce", ErrMalformedMessage)
	}
	if lines[1] != strings.ToUpper(method)+" "+path {
		return ErrMessageMismatch
	}
	if !strings.EqualFold(lines[4], BodyHash(body)) {
		return fmt.Errorf("%w: body hash", ErrMessageMismatch)
	}
	ts, err := strconv.ParseInt(lines[2], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrMalformedMessage)
	}
	age := now.Sub(time.Unix(ts, 0))
	if age < 0 {
		age = -age
	}
	if maxAge > 0 && age > maxAge {
		return ErrMessageExpired
	}
	return nil
}

// ValidateEVMAddress checks if a string is a valid EVM address
func ValidateEVMAddress(address string) bool {
	return common.IsHexAddress(address) && strings.HasPrefix(address, "0x")
}

// ParseAddress parses a 0x-prefixed hex address.
func ParseAddress(address string) (common.Address, error) {
	if !ValidateEVMAddress(address) {
		return common.Address{}, fmt.Errorf("invalid address %q", address)
	}
	return common.HexToAddress(address), nil
}

// NormalizeAddress returns a checksummed EVM address
func NormalizeAddress(address string) string {
	return common.HexToAddress(address).Hex()
}
