package server

import "context"

type contextKey struct{ name string }

var (
	subjectIDKey    = contextKey{"subject_id"}
	memberNumberKey = contextKey{"member_number"}
	sessionIDKey    = contextKey{"session_id"}
)

// WithIdentity returns a context with subject_id, member_number, and
// session_id set. Handlers read these via GetSubjectID, GetMemberNumber,
// GetSessionID.
func WithIdentity(ctx context.Context, subjectID, memberNumber, sessionID string) context.Context {
	ctx = context.WithValue(ctx, subjectIDKey, subjectID)
	ctx = context.WithValue(ctx, memberNumberKey, memberNumber)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return ctx
}

// GetSubjectID returns the subject_id from context and true if set; otherwise "", false.
func GetSubjectID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectIDKey).(string)
	return v, ok
}

// GetMemberNumber returns the member_number from context and true if set; otherwise "", false.
func GetMemberNumber(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(memberNumberKey).(string)
	return v, ok
}

// GetSessionID returns the session_id from context and true if set; otherwise "", false.
func GetSessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok
}
