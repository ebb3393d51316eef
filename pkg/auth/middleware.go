package auth

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/chainsafe/primary-sale-minter/pkg/claims"
	apperrors "github.com/chainsafe/primary-sale-minter/pkg/app/errors"
	apphttp "github.com/chainsafe/primary-sale-minter/pkg/app/http"
)

// Request headers carrying an EIP-191 signed request.
const (
	HeaderSignature = "X-Signature"
	HeaderMessage   = "X-Message"
)

// maxSignedBody bounds the request body read to check its hash.
const maxSignedBody = 1 << 20

// Authenticator resolves the caller of a request from an EIP-191 signature or
// a bearer token. Each signed message is accepted once.
type Authenticator struct {
	tokens *TokenService
	maxAge time.Duration
	used   claims.Store
	now    func() time.Time
	logger *zap.Logger
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithReplayGuard sets the store that records used signed messages. The
// default keeps them in process memory.
func WithReplayGuard(store claims.Store) AuthenticatorOption {
	return func(a *Authenticator) {
		a.used = store
	}
}

// NewAuthenticator creates an Authenticator. tokens may be nil to accept
// signatures only.
func NewAuthenticator(tokens *TokenService, maxAge time.Duration, logger *zap.Logger, opts ...AuthenticatorOption) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Authenticator{tokens: tokens, maxAge: maxAge, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	if a.used == nil {
		a.used = claims.NewMemory()
	}
	return a
}

// Authenticate returns the caller of r. ok is false when r carries no credentials.
func (a *Authenticator) Authenticate(r *http.Request) (caller Caller, ok bool, err error) {
	if sig := r.Header.Get(HeaderSignature); sig != "" {
		addr, err := a.verifySigned(r, sig)
		if err != nil {
			return Caller{}, true, err
		}
		return Caller{Address: addr, Method: MethodSignature}, true, nil
	}

	if h := r.Header.Get("Authorization"); h != "" {
		token, found := strings.CutPrefix(h, "Bearer ")
		if !found {
			return Caller{}, true, ErrInvalidToken
		}
		addr, err := a.tokens.Validate(strings.TrimSpace(token))
		if err != nil {
			return Caller{}, true, err
		}
		return Caller{Address: addr, Method: MethodJWT}, true, nil
	}

	return Caller{}, false, nil
}

func (a *Authenticator) verifySigned(r *http.Request, sig string) (common.Address, error) {
	body, err := readBody(r)
	if err != nil {
		return common.Address{}, err
	}
	msg := r.Header.Get(HeaderMessage)
	if err := CheckRequestMessage(msg, r.Method, r.URL.Path, body, a.now(), a.maxAge); err != nil {
		return common.Address{}, err
	}
	addr, err := VerifyEIP191Signature(msg, sig)
	if err != nil {
		return common.Address{}, err
	}

	// The message hash is the key rather than the signature bytes, which
	// admit a second valid encoding.
	key := "sig:" + crypto.Keccak256Hash([]byte(msg)).Hex()
	fresh, err := a.used.Claim(r.Context(), key, a.replayWindow())
	if err != nil {
		return common.Address{}, fmt.Errorf("record signed message: %w", err)
	}
	if !fresh {
		return common.Address{}, ErrMessageReplayed
	}
	return addr, nil
}

// replayWindow covers every timestamp CheckRequestMessage accepts.
func (a *Authenticator) replayWindow() time.Duration {
	if a.maxAge <= 0 {
		return 0
	}
	return 2 * a.maxAge
}

// readBody reads the request body and puts it back for the handler.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSignedBody+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(body) > maxSignedBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedMessage, maxSignedBody)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// Middleware attaches the authenticated caller to the request context.
// Requests without credentials pass through; invalid credentials get 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok, err := a.Authenticate(r)
		if err != nil {
			a.logger.Debug("authentication failed", zap.String("path", r.URL.Path), zap.Error(err))
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid credentials"))
			return
		}
		if ok {
			r = r.WithContext(WithCaller(r.Context(), caller))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCaller rejects requests that carry no credentials.
func RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CallerFromContext(r.Context()); !ok {
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CallerKey keys rate limiting by authenticated address, falling back to client IP.
func CallerKey(r *http.Request) string {
	if caller, ok := CallerFromContext(r.Context()); ok {
		return caller.Address.Hex()
	}
	return apphttp.RemoteIP(r)
}
