package grpc

import (
	"context"

	"github.com/sap/cloud-security-client-go/core"
	"github.com/sap/cloud-security-client-go/token"
)

// GetToken retrieves the validated token from the context.
//
// Example:
//
//	t, err := cloudsecuritygrpc.GetToken(ctx)
//	if err != nil {
//	    return nil, status.Error(codes.Internal, "failed to get token")
//	}
//	fmt.Println(t.ClientID())
func GetToken(ctx context.Context) (*token.Token, error) {
	return core.GetToken(ctx)
}

// MustGetToken retrieves the validated token from the context or panics.
// Use only when you are certain a token exists (e.g., after interceptor has run).
func MustGetToken(ctx context.Context) *token.Token {
	t, err := core.GetToken(ctx)
	if err != nil {
		panic(err)
	}
	return t
}

// HasToken checks if a validated token exists in the context.
func HasToken(ctx context.Context) bool {
	return core.HasToken(ctx)
}
