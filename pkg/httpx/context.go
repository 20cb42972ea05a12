package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyEmail  ctxKey = "email"
)

// Identity is the authenticated caller resolved from a session token. The
// authn middleware produces one and handlers thread it explicitly into
// service calls.
type Identity struct {
	UserID string
	Email  string
}

// IdentityFromContext extracts the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	userID, ok := ctx.Value(CtxKeyUserID).(string)
	if !ok || userID == "" {
		return Identity{}, false
	}
	email, _ := ctx.Value(CtxKeyEmail).(string)
	return Identity{UserID: userID, Email: email}, true
}
