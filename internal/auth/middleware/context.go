package auth

import "context"

// The authenticated user id travels in the request context under an
// unexported key type so other packages cannot collide with it.
type subjectKey struct{}

func WithSubject(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, subjectKey{}, userID)
}

// SubjectFromContext returns the authenticated user id, or "" outside an
// authenticated request.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}
