package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/taskit/taskit-go/internal/crypto"
	"github.com/taskit/taskit-go/internal/email"
	"github.com/taskit/taskit-go/internal/model"
	"github.com/taskit/taskit-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("please authenticate")
	ErrUserNotFound       = errors.New("user not found")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrEmailTaken         = errors.New("email already taken")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrPasswordForbidden  = errors.New(`password cannot contain "password"`)
	ErrAgeTooLow          = errors.New("must be over 18 to register")
)

// userUpdatableFields is the allow-list for profile updates. Any other key
// in a PATCH payload rejects the whole request before anything is looked up
// or applied.
var userUpdatableFields = map[string]bool{
	"name":     true,
	"email":    true,
	"password": true,
	"age":      true,
}

// AuthService manages identities and their sessions: registration, credential
// checks, token issue/resolve/revoke, profile updates, and account deletion
// with its task cascade.
type AuthService struct {
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	tasks    *repository.TaskRepository
	mailer   *email.Sender

	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users *repository.UserRepository,
	sessions *repository.SessionRepository,
	tasks *repository.TaskRepository,
	mailer *email.Sender,
	jwtSecret string,
	tokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		tasks:     tasks,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a new user account and logs it in, returning the user and
// a fresh session token.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return model.AuthResponse{}, ErrNameRequired
	}
	if req.Email == "" {
		return model.AuthResponse{}, ErrEmailRequired
	}
	normalized := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateEmail(normalized); err != nil {
		return model.AuthResponse{}, err
	}
	if err := validatePassword(req.Password); err != nil {
		return model.AuthResponse{}, err
	}

	age := model.DefaultAge
	if req.Age != nil {
		age = *req.Age
	}
	if age < 18 {
		return model.AuthResponse{}, ErrAgeTooLow
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalized,
		PasswordHash: hash,
		Age:          age,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return model.AuthResponse{}, err
	}

	s.mailer.SendWelcome(user.Email, user.Name)

	return model.AuthResponse{User: user.ToResponse(), Token: token}, nil
}

// Authenticate looks up a user by email and verifies the password against
// the stored hash. It issues no token; that is a separate, explicit step.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{User: user.ToResponse(), Token: token}, nil
}

// IssueToken mints a signed session token for the user and appends it to the
// user's stored session list. The raw token is returned to the caller and
// persisted nowhere else.
func (s *AuthService) IssueToken(ctx context.Context, user *model.User) (string, error) {
	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", err
	}

	if err := s.sessions.Add(ctx, user.ID, token, time.Now().Add(s.tokenTTL)); err != nil {
		return "", err
	}

	return token, nil
}

// Resolve verifies a raw bearer token and maps it back to its user. A token
// passes only if the signature and expiry check out AND the exact token is
// still present in the user's session list, so a revoked token fails even
// when it is structurally valid. Returns the user and the matched raw token.
func (s *AuthService) Resolve(ctx context.Context, rawToken string) (*model.User, string, error) {
	claims, err := crypto.ValidateToken(rawToken, s.jwtSecret)
	if err != nil {
		return nil, "", ErrUnauthenticated
	}

	live, err := s.sessions.Exists(ctx, claims.UserID, rawToken)
	if err != nil {
		return nil, "", err
	}
	if !live {
		return nil, "", ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrUnauthenticated
		}
		return nil, "", err
	}

	return user, rawToken, nil
}

// Revoke removes exactly the given token from the user's session list.
// Idempotent when the token is already gone.
func (s *AuthService) Revoke(ctx context.Context, userID int64, token string) error {
	return s.sessions.Remove(ctx, userID, token)
}

// RevokeAll clears the user's entire session list, logging out every device.
func (s *AuthService) RevokeAll(ctx context.Context, userID int64) error {
	return s.sessions.RemoveAllForUser(ctx, userID)
}

// UpdateProfile applies a partial update to a user. Unknown keys reject the
// request before any field is touched; a password change recomputes the hash
// and only then.
func (s *AuthService) UpdateProfile(ctx context.Context, user *model.User, updates map[string]any) (*model.User, error) {
	for key := range updates {
		if !userUpdatableFields[key] {
			return nil, fmt.Errorf("%w: %q", ErrFieldNotAllowed, key)
		}
	}

	if v, ok := updates["name"]; ok {
		name, ok := v.(string)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, ErrNameRequired
		}
		user.Name = strings.TrimSpace(name)
	}

	if v, ok := updates["email"]; ok {
		addr, ok := v.(string)
		if !ok {
			return nil, ErrEmailInvalid
		}
		normalized := strings.ToLower(strings.TrimSpace(addr))
		if err := validateEmail(normalized); err != nil {
			return nil, err
		}
		user.Email = normalized
	}

	if v, ok := updates["password"]; ok {
		password, ok := v.(string)
		if !ok {
			return nil, ErrPasswordRequired
		}
		if err := validatePassword(password); err != nil {
			return nil, err
		}
		hash, err := crypto.HashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if v, ok := updates["age"]; ok {
		age, ok := v.(float64)
		if !ok || age != float64(int(age)) {
			return nil, ErrAgeTooLow
		}
		if int(age) < 18 {
			return nil, ErrAgeTooLow
		}
		user.Age = int(age)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

// DeleteAccount removes a user, cascading over every task it owns and every
// live session. The closure email is fire-and-forget: a delivery failure
// never rolls back or fails the deletion.
func (s *AuthService) DeleteAccount(ctx context.Context, user *model.User) error {
	if err := s.tasks.DeleteAllForOwner(ctx, user.ID); err != nil {
		return err
	}
	if err := s.sessions.RemoveAllForUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.mailer.SendCancellation(user.Email, user.Name)
	return nil
}

func validateEmail(addr string) error {
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return ErrEmailInvalid
	}

	// mail.ParseAddress accepts bare hostnames like "a@x"; real accounts
	// live under a dotted domain.
	domain := addr[strings.LastIndex(addr, "@")+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return ErrEmailInvalid
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return ErrPasswordForbidden
	}
	return nil
}
