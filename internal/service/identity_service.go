// Package service holds the business operations behind the HTTP handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"snapshare/internal/config"
	"snapshare/internal/middleware"
	"snapshare/internal/models"
	"snapshare/internal/observability"
	"snapshare/internal/repository"
	"snapshare/internal/session"
	"snapshare/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "snapshare-api"
	tokenAudience = "snapshare-client"
	tokenLifetime = 7 * 24 * time.Hour
)

var errInvalidCredentials = models.NewUnauthorizedError("Invalid username or password")

type RegisterInput struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
}

// AuthResult is returned by a successful sign-in.
type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   *models.Account `json:"account"`
	SessionID string          `json:"-"`
}

// Principal is the authenticated caller behind a token.
type Principal struct {
	AccountID uint
	SessionID string
}

type IdentityService struct {
	accounts repository.AccountRepository
	sessions session.Store
	secret   []byte
	hashCost int
	// dummyHash is compared against when the username is unknown so both
	// failure paths pay the bcrypt cost.
	dummyHash []byte
}

func NewIdentityService(accounts repository.AccountRepository, sessions session.Store, cfg *config.Config) *IdentityService {
	return newIdentityService(accounts, sessions, cfg.JWTSecret, bcrypt.DefaultCost)
}

func newIdentityService(accounts repository.AccountRepository, sessions session.Store, secret string, cost int) *IdentityService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("snapshare-dummy-password"), cost)
	return &IdentityService{
		accounts:  accounts,
		sessions:  sessions,
		secret:    []byte(secret),
		hashCost:  cost,
		dummyHash: dummy,
	}
}

// Register validates the input, hashes the password and inserts the account.
// The username/email lookups only give an early answer; the unique indexes
// decide races.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	ctx, finish := observability.StartSpan(ctx, "identity", "Register")
	account, err := s.register(ctx, in)
	finish(err)

	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	observability.AuthEvents.WithLabelValues("register", outcome).Inc()
	return account, err
}

func (s *IdentityService) register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidatePasswordConfirmation(in.Password, in.PasswordConfirmation); err != nil {
		return nil, err
	}

	taken, err := s.accounts.ExistsUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewDuplicateKeyError("username", "Username already taken")
	}
	if _, err := s.accounts.GetByEmail(ctx, in.Email); err == nil {
		return nil, models.NewDuplicateKeyError("email", "Email already registered")
	} else if !models.IsCode(err, models.CodeNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	account := &models.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "account registered", "account_id", account.ID)
	return account, nil
}

// Authenticate checks the password against the stored hash and opens a session.
// Unknown usernames and wrong passwords produce the same error.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	ctx, finish := observability.StartSpan(ctx, "identity", "Authenticate")
	result, err := s.authenticate(ctx, username, password)
	finish(err)

	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	observability.AuthEvents.WithLabelValues("login", outcome).Inc()
	return result, err
}

func (s *IdentityService) authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, errInvalidCredentials
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, account.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	expiresAt := time.Now().Add(tokenLifetime)
	token, err := s.generateToken(account.ID, sess.ID, expiresAt)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, Account: account, SessionID: sess.ID}, nil
}

func (s *IdentityService) generateToken(accountID uint, sessionID string, expiresAt time.Time) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(accountID), 10),
		"sid": sessionID,
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Resolve validates the token and confirms its session is still live.
func (s *IdentityService) Resolve(ctx context.Context, tokenString string) (Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Principal{}, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, models.NewUnauthorizedError("Invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	accountID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || accountID == 0 {
		return Principal{}, models.NewUnauthorizedError("Invalid token subject")
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return Principal{}, models.NewUnauthorizedError("Invalid token session")
	}

	sess, err := s.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Principal{}, models.NewUnauthorizedError("Session expired")
		}
		return Principal{}, models.NewInternalError(err)
	}
	if sess.AccountID != uint(accountID) {
		return Principal{}, models.NewUnauthorizedError("Invalid token session")
	}
	return Principal{AccountID: sess.AccountID, SessionID: sid}, nil
}

// ResolveToken adapts Resolve to middleware.TokenResolver.
func (s *IdentityService) ResolveToken(ctx context.Context, token string) (uint, string, error) {
	p, err := s.Resolve(ctx, token)
	return p.AccountID, p.SessionID, err
}

// Logout destroys the session; tokens naming it stop resolving.
func (s *IdentityService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return models.NewInternalError(err)
	}
	observability.AuthEvents.WithLabelValues("logout", "ok").Inc()
	return nil
}
