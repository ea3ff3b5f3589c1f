package middleware

import "context"

type contextKey int

const (
	ctxUserID contextKey = iota
	ctxRole
	ctxAccessID
)

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

// UserIDFromContext is empty for anonymous callers.
func UserIDFromContext(ctx context.Context) string { return stringValue(ctx, ctxUserID) }

// RoleFromContext holds the token's role claim (CUSTOMER or MERCHANT).
func RoleFromContext(ctx context.Context) string { return stringValue(ctx, ctxRole) }

// AccessIDFromContext is the token jti, used to revoke the session on logout.
func AccessIDFromContext(ctx context.Context) string { return stringValue(ctx, ctxAccessID) }

func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, ctxUserID, userID)
}

func WithAccessID(ctx context.Context, accessID string) context.Context {
	return withString(ctx, ctxAccessID, accessID)
}
