package internal

import (
	"context"
)

type ctxKey string

const (
	ContextSessionKey  ctxKey = "sessionID"
	ContextCustomerKey ctxKey = "customerID"
)

// SessionIDFromContext returns the shopper session id placed in the context
// by the session middleware, or empty when the request carries none.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if sessionID, ok := ctx.Value(ContextSessionKey).(string); ok {
		return sessionID
	}
	return ""
}

func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextSessionKey, sessionID)
}

// CustomerIDFromContext returns the logged-in customer id, or zero for guests.
func CustomerIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if customerID, ok := ctx.Value(ContextCustomerKey).(int64); ok {
		return customerID
	}
	return 0
}

func ContextWithCustomerID(ctx context.Context, customerID int64) context.Context {
	return context.WithValue(ctx, ContextCustomerKey, customerID)
}
