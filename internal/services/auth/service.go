// Package authservice implements the credential and token lifecycle:
// registration, login, and stateless project-scoped JWT verification.
package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"baseserver/internal/config"
	"baseserver/internal/models"
	"baseserver/internal/query"
	"baseserver/internal/validation"
)

const pkg = "authService/"

type AuthService struct {
	log         *slog.Logger
	projects    ProjectResolver
	bcryptCost  int
	tokenTTL    time.Duration
	rememberTTL time.Duration
}

func New(log *slog.Logger, projects ProjectResolver, cfg config.Auth) *AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		log:         log,
		projects:    projects,
		bcryptCost:  cost,
		tokenTTL:    cfg.TokenTTL,
		rememberTTL: cfg.RememberTTL,
	}
}

// Register creates a user in the project's reserved users collection.
// The first user of a project becomes admin. Returns the stored user
// without the password hash.
func (a *AuthService) Register(ctx context.Context, project, email, password string) (models.Document, error) {
	op := pkg + "Register"

	log := a.log.With(slog.String("op", op), slog.String("project", project))

	log.Debug("attempting to register user")

	if err := validation.RegisterInput(email, password); err != nil {
		log.Warn("invalid registration input", slog.String("error", err.Error()))
		return nil, err
	}

	users, err := a.projects.Collection(project, models.UsersTable)
	if err != nil {
		return nil, err
	}

	_, err = users.FindOne(ctx, query.Eq(models.UserFieldEmail, email))
	if err == nil {
		log.Warn("user already exists")
		return nil, models.ErrUserExists
	}
	if !errors.Is(err, models.ErrNotFound) {
		log.Error("failed to check existing user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	total, err := users.Count(ctx, nil)
	if err != nil {
		log.Error("failed to count users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	role := models.RoleUser
	if total == 0 {
		role = models.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, models.ErrInternal
	}

	user, err := users.Insert(ctx, models.Document{
		models.UserFieldEmail:    email,
		models.UserFieldPassword: string(hash),
		models.UserFieldRole:     role,
	})
	if err != nil {
		log.Error("failed to insert user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("user registered", slog.String("role", role))

	return models.Sanitize(user), nil
}

// Login verifies credentials and issues a token signed with the
// project's secret. remember extends the ttl.
func (a *AuthService) Login(ctx context.Context, project, email, password string, remember bool) (string, error) {
	op := pkg + "Login"

	log := a.log.With(slog.String("op", op), slog.String("project", project))

	log.Debug("attempting to login user")

	if err := validation.LoginInput(email, password); err != nil {
		log.Warn("invalid login input", slog.String("error", err.Error()))
		return "", err
	}

	users, err := a.projects.Collection(project, models.UsersTable)
	if err != nil {
		return "", err
	}

	user, err := users.FindOne(ctx, query.Eq(models.UserFieldEmail, email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Info("login with unknown email")
			return "", models.ErrInvalidCredentials
		}
		log.Error("failed to look up user", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hash, _ := user[models.UserFieldPassword].(string)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		log.Info("invalid credentials")
		return "", models.ErrInvalidCredentials
	}

	ttl := a.tokenTTL
	if remember {
		ttl = a.rememberTTL
	}

	role, _ := user[models.UserFieldRole].(string)
	token, err := a.issueToken(project, &models.Claims{
		UserID: user.ID(),
		Email:  email,
		Role:   role,
	}, ttl)
	if err != nil {
		log.Error("failed to issue token", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("user logged in")

	return token, nil
}

func (a *AuthService) issueToken(project string, claims *models.Claims, ttl time.Duration) (string, error) {
	secret, err := a.projects.Secret(project)
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": claims.UserID,
		"email":  claims.Email,
		"role":   claims.Role,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	})

	return token.SignedString(secret)
}

// VerifyToken checks a bearer token against the project's secret and
// returns its claims. Expired tokens are reported distinctly from
// malformed or mis-signed ones.
func (a *AuthService) VerifyToken(project, tokenStr string) (*models.Claims, error) {
	secret, err := a.projects.Secret(project)
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrTokenInvalid
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, models.ErrTokenInvalid
	}

	userID, _ := mapClaims["userId"].(string)
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	if userID == "" {
		return nil, models.ErrTokenInvalid
	}

	return &models.Claims{UserID: userID, Email: email, Role: role}, nil
}

// Authorize reports whether the claims carry one of the required
// roles. No roles means any authenticated user.
func Authorize(claims *models.Claims, roles ...string) bool {
	if claims == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if claims.Role == role {
			return true
		}
	}
	return false
}
