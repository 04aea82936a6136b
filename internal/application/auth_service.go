package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/vetclinic/internal/persistence"
)

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService coordinates registration, login, session validation, and logout.
type AuthService struct {
	users          persistence.UserRepository
	sessions       persistence.SessionRepository
	hashPassword   PasswordHasher
	verifyPassword PasswordVerifier
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(users persistence.UserRepository, sessions persistence.SessionRepository, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = idGenerator
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		hashPassword:   func(password string) (string, error) { return CreatePasswordHash(password, DefaultArgon2idParams) },
		verifyPassword: VerifyPassword,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Register validates the registration form and persists a new account.
// Every check runs so the caller can surface all issues at once. Pet owner
// accounts are approved immediately; clinic staff accounts start unapproved
// and cannot log in until an administrator approves them.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (user persistence.User, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	fullName := strings.TrimSpace(input.FullName)
	email := normalizeEmail(input.Email)
	role := Role(strings.TrimSpace(input.Role))

	logger := s.loggerWith(ctx, "Register",
		"email", email,
		"role", string(role),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "registration succeeded")
	}()

	vErr := &ValidationError{}
	if fullName == "" {
		vErr.add("full_name", "Full name is required.")
	}
	if email == "" {
		vErr.add("email", "Email is required.")
	} else if _, mailErr := mail.ParseAddress(email); mailErr != nil {
		vErr.add("email", "Email is not a valid address.")
	}
	if input.Password == "" {
		vErr.add("password", "Password is required.")
	} else if len(input.Password) < 8 {
		vErr.add("password", "Password must be at least 8 characters.")
	}
	if input.ConfirmPassword != input.Password {
		vErr.add("confirm_password", "Passwords do not match.")
	}
	if !role.Registerable() {
		vErr.add("role", "Select a valid account type.")
	}
	if !input.TermsAccepted {
		vErr.addMessage("You must accept the terms of service to register.")
	}
	if email != "" {
		if _, lookupErr := s.users.GetUserByEmail(ctx, email); lookupErr == nil {
			vErr.add("email", "An account with this email already exists.")
		} else if !errors.Is(lookupErr, persistence.ErrNotFound) {
			err = lookupErr
			return
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	hash, hashErr := s.hashPassword(input.Password)
	if hashErr != nil {
		err = hashErr
		return
	}

	now := s.now()
	user = persistence.User{
		ID:           s.idGenerator(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         string(role),
		IsApproved:   role != RoleClinicStaff,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			err = ErrAlreadyExists
		}
		return
	}

	return user, nil
}

// Login validates credentials against the stored account and issues a new
// session. The selected role must match the stored role, and unapproved
// clinic staff are turned away until approved.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	email := normalizeEmail(input.Email)
	role := Role(strings.TrimSpace(input.Role))

	logger := s.loggerWith(ctx, "Login",
		"email", email,
		"role", string(role),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.Principal.UserID).InfoContext(ctx, "login succeeded")
	}()

	if email == "" || input.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	user, lookupErr := s.users.GetUserByEmail(ctx, email)
	if lookupErr != nil {
		if errors.Is(lookupErr, persistence.ErrNotFound) {
			err = ErrAccountNotFound
			return
		}
		err = lookupErr
		return
	}

	if !role.IsValid() || string(role) != user.Role {
		err = ErrRoleMismatch
		return
	}

	if verifyErr := s.verifyPassword(user.PasswordHash, input.Password); verifyErr != nil {
		err = ErrInvalidCredentials
		return
	}

	if Role(user.Role) == RoleClinicStaff && !user.IsApproved {
		err = ErrPendingApproval
		return
	}

	now := s.now()
	if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return
	}

	session := persistence.Session{
		ID:        s.idGenerator(),
		UserID:    user.ID,
		Token:     s.tokenGenerator(),
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	persisted, createErr := s.sessions.CreateSession(ctx, session)
	if createErr != nil {
		err = createErr
		return
	}

	result = LoginResult{
		Principal: Principal{
			UserID:      user.ID,
			DisplayName: user.FullName,
			Role:        Role(user.Role),
		},
		Token:     persisted.Token,
		ExpiresAt: persisted.ExpiresAt,
	}
	return result, nil
}

// ValidateSession resolves a session token to the principal it represents.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	token = strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession",
		"token_provided", token != "",
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if token == "" {
		err = ErrUnauthorized
		return
	}

	session, lookupErr := s.sessions.GetSession(ctx, token)
	if lookupErr != nil {
		if errors.Is(lookupErr, persistence.ErrNotFound) {
			err = ErrUnauthorized
			return
		}
		err = lookupErr
		return
	}

	now := s.now()
	if session.RevokedAt != nil {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}

	user, userErr := s.users.GetUser(ctx, session.UserID)
	if userErr != nil {
		if errors.Is(userErr, persistence.ErrNotFound) {
			err = ErrUnauthorized
			return
		}
		err = userErr
		return
	}

	principal = Principal{
		UserID:      user.ID,
		DisplayName: user.FullName,
		Role:        Role(user.Role),
	}
	return principal, nil
}

// Logout revokes the presented session token unconditionally. An unknown
// token is not an error; the caller clears the cookie either way.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	logger := s.loggerWith(ctx, "Logout")
	if err := s.sessions.RevokeSession(ctx, token, s.now()); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "logout succeeded")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
