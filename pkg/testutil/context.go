package testutil

import (
	"context"
	"net/http"

	"verigate/internal/platform/middleware"
)

// WithCaller adds an authenticated caller to the request context. This
// simulates what the auth middleware does for authenticated requests so
// handler tests can bypass token validation.
func WithCaller(req *http.Request, callerID, clientID string) *http.Request {
	ctx := req.Context()
	if callerID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyCallerID, callerID)
	}
	if clientID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyClientID, clientID)
	}
	return req.WithContext(ctx)
}
