package middleware

import "baseserver/internal/models"

const pkg = "middleware/"

// TokenVerifier checks a bearer token against a project's secret.
type TokenVerifier interface {
	VerifyToken(project, token string) (*models.Claims, error)
}
