package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"wayfarer/internal/app/policies"
	domainuser "wayfarer/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrInvalidCode        = errors.New("auth: invalid or expired code")
	ErrPhoneRequired      = errors.New("auth: phone number is required")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Claims is what a verified access token asserts about its bearer.
type Claims struct {
	UserID string
	Admin  bool
}

type TokenIssuer interface {
	Issue(userID string, admin bool) (string, error)
	Verify(token string) (Claims, error)
}

type Service struct {
	Users     domainuser.Repository
	Passwords PasswordHasher
	Tokens    TokenIssuer
	Codes     policies.CodeStore
	CodeTTL   time.Duration
	Logger    *slog.Logger
}

type RegisterParams struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Password  string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domainuser.User
	Token string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if len(params.Password) < 8 {
		return nil, ErrPasswordTooShort
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Phone:        params.Phone,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return nil, err
	}
	token, err := s.Tokens.Issue(string(u.ID), u.IsAdmin)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", u.ID, "email", u.Email)
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(u.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.Tokens.Issue(string(u.ID), u.IsAdmin)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", u.ID)
	}
	return &AuthResult{User: u, Token: token}, nil
}

// ResolveToken verifies a bearer token and loads the account behind it.
func (s *Service) ResolveToken(ctx context.Context, token string) (*domainuser.User, error) {
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.Users.ByID(ctx, domainuser.ID(claims.UserID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return u, nil
}

// SendCode stores a fresh one-time code for the phone number. Delivery is
// simulated: the code is logged instead of sent over SMS.
func (s *Service) SendCode(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneRequired
	}
	code, err := newCode()
	if err != nil {
		return err
	}
	ttl := s.CodeTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if err := s.Codes.Put(ctx, phone, code, ttl); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("otp issued", "phone", phone, "code", code, "ttl", ttl)
	}
	return nil
}

func (s *Service) VerifyCode(ctx context.Context, phone, code string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneRequired
	}
	stored, err := s.Codes.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, policies.ErrCodeNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if stored != strings.TrimSpace(code) {
		return ErrInvalidCode
	}
	return s.Codes.Delete(ctx, phone)
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
