package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskit/taskit-go/internal/email"
	"github.com/taskit/taskit-go/internal/model"
	"github.com/taskit/taskit-go/internal/repository"
)

func newTestAuthService() *AuthService {
	return NewAuthService(
		repository.NewUserRepository(nil),
		repository.NewSessionRepository(nil),
		repository.NewTaskRepository(nil),
		email.NewSender("", "", "no-reply@test.local", "", ""),
		"test-secret",
		time.Hour,
	)
}

func intPtr(n int) *int { return &n }

func TestRegister_EmptyName(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), model.CreateUserRequest{
		Email:    "a@x.com",
		Password: "secret1",
	})

	if err != ErrNameRequired {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}
}

func TestRegister_EmptyEmail(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), model.CreateUserRequest{
		Name:     "A",
		Password: "secret1",
	})

	if err != ErrEmailRequired {
		t.Errorf("expected ErrEmailRequired, got %v", err)
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), model.CreateUserRequest{
		Name:     "A",
		Email:    "not-an-email",
		Password: "secret1",
	})

	if err != ErrEmailInvalid {
		t.Errorf("expected ErrEmailInvalid, got %v", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), model.CreateUserRequest{
		Name:     "A",
		Email:    "a@x.com",
		Password: "abc",
	})

	if err != ErrPasswordTooShort {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestRegister_PasswordContainsPassword(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), model.CreateUserRequest{
		Name:     "A",
		Email:    "a@x.com",
		Password: "MyPassword123",
	})

	if err != ErrPasswordForbidden {
		t.Errorf("expected ErrPasswordForbidden, got %v", err)
	}
}

func TestRegister_Underage(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), model.CreateUserRequest{
		Name:     "A",
		Email:    "a@x.com",
		Password: "secret1",
		Age:      intPtr(17),
	})

	if err != ErrAgeTooLow {
		t.Errorf("expected ErrAgeTooLow, got %v", err)
	}
}

func TestUpdateProfile_DisallowedField(t *testing.T) {
	svc := newTestAuthService()
	user := &model.User{ID: 1, Name: "A", Email: "a@x.com", Age: 20}

	// The allow-list check runs before any lookup or mutation; with nil-DB
	// repositories this only passes if nothing touches the database.
	_, err := svc.UpdateProfile(context.Background(), user, map[string]any{"tokens": []any{}})

	if !errors.Is(err, ErrFieldNotAllowed) {
		t.Errorf("expected ErrFieldNotAllowed, got %v", err)
	}
}

func TestUpdateProfile_InvalidEmail(t *testing.T) {
	svc := newTestAuthService()
	user := &model.User{ID: 1, Name: "A", Email: "a@x.com", Age: 20}

	_, err := svc.UpdateProfile(context.Background(), user, map[string]any{"email": "nope"})

	if err != ErrEmailInvalid {
		t.Errorf("expected ErrEmailInvalid, got %v", err)
	}
}

func TestUpdateProfile_Underage(t *testing.T) {
	svc := newTestAuthService()
	user := &model.User{ID: 1, Name: "A", Email: "a@x.com", Age: 20}

	_, err := svc.UpdateProfile(context.Background(), user, map[string]any{"age": float64(17)})

	if err != ErrAgeTooLow {
		t.Errorf("expected ErrAgeTooLow, got %v", err)
	}
}

func TestUpdateProfile_FractionalAge(t *testing.T) {
	svc := newTestAuthService()
	user := &model.User{ID: 1, Name: "A", Email: "a@x.com", Age: 20}

	_, err := svc.UpdateProfile(context.Background(), user, map[string]any{"age": 18.5})

	if err != ErrAgeTooLow {
		t.Errorf("expected ErrAgeTooLow, got %v", err)
	}
}

func TestUpdateProfile_ForbiddenPassword(t *testing.T) {
	svc := newTestAuthService()
	user := &model.User{ID: 1, Name: "A", Email: "a@x.com", Age: 20}

	_, err := svc.UpdateProfile(context.Background(), user, map[string]any{"password": "password1"})

	if err != ErrPasswordForbidden {
		t.Errorf("expected ErrPasswordForbidden, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	if err := validateEmail("a@x.com"); err != nil {
		t.Errorf("expected valid email, got %v", err)
	}
	if err := validateEmail("A B <a@x.com>"); err != ErrEmailInvalid {
		t.Errorf("expected ErrEmailInvalid for display-name address, got %v", err)
	}
	if err := validateEmail("no-at-sign"); err != ErrEmailInvalid {
		t.Errorf("expected ErrEmailInvalid, got %v", err)
	}
}

func TestValidateEmail_RequiresDottedDomain(t *testing.T) {
	// mail.ParseAddress alone would accept these.
	for _, addr := range []string{"a@x", "a@localhost", "a@x.", "a@.x"} {
		if err := validateEmail(addr); err != ErrEmailInvalid {
			t.Errorf("expected ErrEmailInvalid for %q, got %v", addr, err)
		}
	}
	for _, addr := range []string{"a@x.com", "a.b@mail.example.co"} {
		if err := validateEmail(addr); err != nil {
			t.Errorf("expected %q to be valid, got %v", addr, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := validatePassword(""); err != ErrPasswordRequired {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}
	if err := validatePassword("abc"); err != ErrPasswordTooShort {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := validatePassword("PASSWORD1"); err != ErrPasswordForbidden {
		t.Errorf("expected ErrPasswordForbidden, got %v", err)
	}
	if err := validatePassword("secret1"); err != nil {
		t.Errorf("expected valid password, got %v", err)
	}
}
