package auth

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type contextKey string

const contextKeyCaller contextKey = "caller"

// Method names how a caller was authenticated.
type Method string

const (
	MethodSignature Method = "eip191"
	MethodJWT       Method = "jwt"
)

// Caller is the authenticated principal of a request.
type Caller struct {
	Address common.Address
	Method  Method
}

// WithCaller adds the authenticated caller to the context
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, contextKeyCaller, caller)
}

// CallerFromContext retrieves the authenticated caller from the context
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(contextKeyCaller).(Caller)
	return caller, ok
}
