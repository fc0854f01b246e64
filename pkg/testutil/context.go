package testutil

import (
	"net/http"

	id "baiki/pkg/domain"
	"baiki/pkg/requestcontext"
)

// WithAuth adds both user ID and session ID to the request context.
// Invalid IDs are silently ignored.
func WithAuth(req *http.Request, userID, sessionID string) *http.Request {
	ctx := req.Context()
	if parsedUserID, err := id.ParseUserID(userID); err == nil {
		ctx = requestcontext.WithUserID(ctx, parsedUserID)
	}
	if parsedSessionID, err := id.ParseSessionID(sessionID); err == nil {
		ctx = requestcontext.WithSessionID(ctx, parsedSessionID)
	}
	return req.WithContext(ctx)
}
