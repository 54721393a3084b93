package auth

import "context"

// Caller is the authenticated principal of a request: the token subject and
// the role RBAC decisions are made against.
type Caller struct {
	Subject string
	Role    string
}

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func CallerFromContext(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey{}).(Caller)
	return c
}

// WithSubject sets the subject and keeps any role already attached.
func WithSubject(ctx context.Context, sub string) context.Context {
	c := CallerFromContext(ctx)
	c.Subject = sub
	return WithCaller(ctx, c)
}

// WithRole replaces the role and keeps the subject.
func WithRole(ctx context.Context, role string) context.Context {
	c := CallerFromContext(ctx)
	c.Role = role
	return WithCaller(ctx, c)
}

func SubjectFromContext(ctx context.Context) string { return CallerFromContext(ctx).Subject }
func RoleFromContext(ctx context.Context) string    { return CallerFromContext(ctx).Role }
