package contextkey

import "context"

// key is a private type to avoid context key collisions across packages.
type key string

const (
	TraceID   key = "trace_id"
	RequestID key = "request_id"
	Username  key = "username"
	ContestID key = "contest_id"
)

// WithUsername tags ctx with the acting username.
func WithUsername(ctx context.Context, username string) context.Context {
	if username == "" {
		return ctx
	}
	return context.WithValue(ctx, Username, username)
}

// WithContestID tags ctx with the contest being operated on.
func WithContestID(ctx context.Context, contestID string) context.Context {
	if contestID == "" {
		return ctx
	}
	return context.WithValue(ctx, ContestID, contestID)
}
