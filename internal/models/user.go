package models

import "context"

// UsersTable is the reserved collection holding a project's users.
// Table endpoints refuse names with this prefix.
const UsersTable = "_users"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	UserFieldEmail    = "email"
	UserFieldPassword = "password"
	UserFieldRole     = "role"
)

// Claims is the decoded payload of a project-scoped auth token.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

type contextKey string

const (
	ClaimsContextKey  contextKey = "claims"
	ProjectContextKey contextKey = "project"
)

func ClaimsFromContext(ctx context.Context) *Claims {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

func ProjectFromContext(ctx context.Context) string {
	project, _ := ctx.Value(ProjectContextKey).(string)
	return project
}

// Sanitize strips the password hash from a user document before it
// leaves the service layer.
func Sanitize(user Document) Document {
	safe := user.Clone()
	delete(safe, UserFieldPassword)
	return safe
}
