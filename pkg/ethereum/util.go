package ethereum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
)

// weiDecimals is the number of decimals of the native currency.
const weiDecimals = 18

// MinterRoleID is the role the token contract requires for minting,
// the string "MINTER_ROLE" right-padded to 32 bytes.
var MinterRoleID = func() [32]byte {
	var id [32]byte
	copy(id[:], "MINTER_ROLE")
	return id
}()

// ToWei converts an amount of native units to wei. Amounts that are negative
// or finer than one wei are rejected.
func ToWei(amount decimal.Decimal) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative amount %s", amount)
	}
	wei := amount.Shift(weiDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("amount %s has more than %d decimals", amount, weiDecimals)
	}
	return wei.BigInt(), nil
}

// FromWei converts wei to native units.
func FromWei(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -weiDecimals)
}

func parseMaxGasPrice(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 {
		return nil, fmt.Errorf("invalid max gas price %q", s)
	}
	return v, nil
}

// ambiguousSendError reports whether a send failed without a verdict from the
// node, in which case the transaction may still have been broadcast.
func ambiguousSendError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// alreadyKnown reports whether the node already holds the transaction.
func alreadyKnown(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already known")
}
