package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domainuser "wayfarer/internal/domain/user"
	"wayfarer/internal/infra/storage/memory"
)

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(userID string, admin bool) (string, error) {
	return fmt.Sprintf("token:%s:%t", userID, admin), nil
}

func (fakeIssuer) Verify(token string) (Claims, error) {
	var id string
	var admin bool
	if _, err := fmt.Sscanf(token, "token:%s", &id); err != nil {
		return Claims{}, errors.New("bad token")
	}
	if n := len(id); n > 5 && id[n-5:] == ":true" {
		id, admin = id[:n-5], true
	} else if n > 6 && id[n-6:] == ":false" {
		id = id[:n-6]
	} else {
		return Claims{}, errors.New("bad token")
	}
	return Claims{UserID: id, Admin: admin}, nil
}

func newTestService() *Service {
	return &Service{
		Users:     memory.NewUserRepository(),
		Passwords: fakeHasher{},
		Tokens:    fakeIssuer{},
		Codes:     memory.NewCodeStore(),
		CodeTTL:   time.Minute,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	result, err := svc.Register(ctx, RegisterParams{
		Email:     "Ana@Example.COM",
		FirstName: "Ana",
		LastName:  "Petrova",
		Password:  "correct horse",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token on registration")
	}
	if result.User.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", result.User.Email)
	}

	login, err := svc.Login(ctx, LoginParams{Email: "ana@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Fatal("login resolved a different account")
	}

	if _, err := svc.Login(ctx, LoginParams{Email: "ana@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", FirstName: "A", LastName: "B", Password: "short"}); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	params := RegisterParams{Email: "dup@example.com", FirstName: "A", LastName: "B", Password: "long enough"}
	if _, err := svc.Register(ctx, params); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := svc.Register(ctx, params); !errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}
}

func TestResolveToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	result, err := svc.Register(ctx, RegisterParams{Email: "t@example.com", FirstName: "T", LastName: "U", Password: "long enough"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	u, err := svc.ResolveToken(ctx, result.Token)
	if err != nil {
		t.Fatalf("ResolveToken returned error: %v", err)
	}
	if u.ID != result.User.ID {
		t.Fatal("token resolved a different account")
	}

	if _, err := svc.ResolveToken(ctx, "garbage"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.ResolveToken(ctx, "token:ghost:false"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for deleted account, got %v", err)
	}
}

func TestCodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	codes := svc.Codes.(*memory.CodeStore)

	if err := svc.SendCode(ctx, ""); !errors.Is(err, ErrPhoneRequired) {
		t.Fatalf("expected ErrPhoneRequired, got %v", err)
	}

	if err := svc.SendCode(ctx, "+38268000000"); err != nil {
		t.Fatalf("SendCode returned error: %v", err)
	}
	code, err := codes.Get(ctx, "+38268000000")
	if err != nil {
		t.Fatalf("stored code missing: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", code)
	}

	if err := svc.VerifyCode(ctx, "+38268000000", "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode for wrong code, got %v", err)
	}
	if err := svc.VerifyCode(ctx, "+38268000000", code); err != nil {
		t.Fatalf("VerifyCode returned error: %v", err)
	}
	// Codes are single use.
	if err := svc.VerifyCode(ctx, "+38268000000", code); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode on reuse, got %v", err)
	}
}
