package core

import (
	"context"

	"github.com/sap/cloud-security-client-go/token"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	tokenKey contextKey = iota
)

// GetToken retrieves the validated token from the context.
//
// Example usage:
//
//	t, err := core.GetToken(ctx)
//	if err != nil {
//	    return err
//	}
//	log.Println(t.ClientID())
func GetToken(ctx context.Context) (*token.Token, error) {
	t, ok := ctx.Value(tokenKey).(*token.Token)
	if !ok || t == nil {
		return nil, ErrTokenNotFound
	}

	return t, nil
}

// SetToken stores a validated token in the context.
// This is a helper function for adapters to set the token after validation.
func SetToken(ctx context.Context, t *token.Token) context.Context {
	return context.WithValue(ctx, tokenKey, t)
}

// HasToken checks if a token exists in the context without retrieving it.
func HasToken(ctx context.Context) bool {
	t, ok := ctx.Value(tokenKey).(*token.Token)
	return ok && t != nil
}
