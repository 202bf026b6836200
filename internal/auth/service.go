package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mr1hm/flood-response/internal/models"
	"github.com/mr1hm/flood-response/internal/repository"
	"github.com/mr1hm/flood-response/internal/session"
)

const minPasswordLength = 6

// SessionStore persists active sessions keyed by token JTI.
type SessionStore interface {
	Save(ctx context.Context, jti, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, jti string) (string, error)
	Revoke(ctx context.Context, jti string) error
}

// Service implements email/password identity: sign-up, sign-in, sign-out,
// and bearer-token resolution for the identity gate.
type Service struct {
	users      repository.UserRepository
	sessions   SessionStore
	secret     []byte
	accessTTL  time.Duration
	bcryptCost int
}

func NewService(users repository.UserRepository, sessions SessionStore, secret string, accessTTL time.Duration, bcryptCost int) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		bcryptCost: bcryptCost,
	}
}

// Credentials is the sign-up/sign-in payload.
type Credentials struct {
	Email    string
	Password string
}

// Session is an established sign-in: the user plus a bearer token.
type Session struct {
	User  *models.User
	Token string
}

// SignUp creates an account and signs the new user in.
func (s *Service) SignUp(ctx context.Context, creds Credentials) (*Session, error) {
	if _, err := mail.ParseAddress(creds.Email); err != nil {
		return nil, ErrMalformedEmail
	}
	if len(creds.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	existing, err := s.users.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.establishSession(ctx, user)
}

// SignIn checks credentials and establishes a session. Unknown accounts and
// wrong passwords are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, ErrInvalidCredential
	}

	user, err := s.users.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.establishSession(ctx, user)
}

// SignOut revokes the session behind the token. Revoking an already-invalid
// token is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return nil
	}
	return s.sessions.Revoke(ctx, claims.ID)
}

// Identify resolves a bearer token to its user. It fails when the token is
// malformed, expired, its session was revoked, or the account is gone.
func (s *Service) Identify(ctx context.Context, token string) (*models.User, error) {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return nil, err
	}

	userID, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionRevoked
		}
		return nil, fmt.Errorf("look up session: %w", err)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *Service) establishSession(ctx context.Context, user *models.User) (*Session, error) {
	token, jti, err := IssueToken(s.secret, user.ID, user.Email, s.accessTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, jti, user.ID, s.accessTTL); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}
