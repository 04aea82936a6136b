package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/vetclinic/internal/persistence"
)

// AdminService handles staff approval, role management, and the user
// listing. Rejecting a staff account hard-deletes the row; there is no
// soft-delete or undo.
type AdminService struct {
	users        persistence.UserRepository
	hashPassword PasswordHasher
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewAdminService wires dependencies for the admin service.
func NewAdminService(users persistence.UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AdminService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AdminService{
		users:        users,
		hashPassword: func(password string) (string, error) { return CreatePasswordHash(password, DefaultArgon2idParams) },
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *AdminService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AdminService", operation, attrs...)
}

// ApproveStaff marks a pending clinic staff account as approved.
func (s *AdminService) ApproveStaff(ctx context.Context, principal Principal, userID string) (err error) {
	if s == nil {
		return fmt.Errorf("AdminService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "ApproveStaff", "user_id", userID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "staff approval failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "staff approved")
	}()

	user, getErr := s.staffUser(ctx, userID)
	if getErr != nil {
		return getErr
	}

	user.IsApproved = true
	user.UpdatedAt = s.now()
	return s.users.UpdateUser(ctx, user)
}

// RejectStaff deletes a clinic staff account outright. The email becomes
// free for re-registration and any later login fails as account-not-found.
func (s *AdminService) RejectStaff(ctx context.Context, principal Principal, userID string) (err error) {
	if s == nil {
		return fmt.Errorf("AdminService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "RejectStaff", "user_id", userID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "staff rejection failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "staff rejected")
	}()

	if _, err = s.staffUser(ctx, userID); err != nil {
		return err
	}

	if err = s.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ChangeRole sets a user's role to any of the three roles. Approval state is
// not revisited, so promoting an unapproved staff account to admin bypasses
// the approval gate entirely.
func (s *AdminService) ChangeRole(ctx context.Context, principal Principal, userID string, role string) (err error) {
	if s == nil {
		return fmt.Errorf("AdminService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "ChangeRole", "user_id", userID, "role", role)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "role change failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "role changed")
	}()

	target := Role(role)
	if !target.IsValid() {
		vErr := &ValidationError{}
		vErr.add("role", "Select a valid role.")
		return vErr
	}

	user, getErr := s.users.GetUser(ctx, userID)
	if getErr != nil {
		if errors.Is(getErr, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return getErr
	}

	user.Role = string(target)
	user.UpdatedAt = s.now()
	return s.users.UpdateUser(ctx, user)
}

// ListUsers returns accounts matching the admin listing filters. Role and
// approval filters default to all and combine with logical AND.
func (s *AdminService) ListUsers(ctx context.Context, principal Principal, filter UserListFilter) ([]persistence.User, error) {
	if s == nil {
		return nil, fmt.Errorf("AdminService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}

	repoFilter := persistence.UserFilter{}
	if Role(filter.RoleFilter).IsValid() {
		repoFilter.Role = filter.RoleFilter
	}
	switch filter.ApprovalFilter {
	case "approved":
		approved := true
		repoFilter.Approved = &approved
	case "pending":
		approved := false
		repoFilter.Approved = &approved
	}

	return s.users.ListUsers(ctx, repoFilter)
}

// ListPendingStaff returns unapproved clinic staff accounts for the admin
// dashboard.
func (s *AdminService) ListPendingStaff(ctx context.Context, principal Principal) ([]persistence.User, error) {
	if s == nil {
		return nil, fmt.Errorf("AdminService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}

	approved := false
	return s.users.ListUsers(ctx, persistence.UserFilter{Role: string(RoleClinicStaff), Approved: &approved})
}

// EnsureAdmin creates the bootstrap administrator account when no admin
// exists yet. It is called once at startup and is a no-op when an admin row
// is already present.
func (s *AdminService) EnsureAdmin(ctx context.Context, email, password string) (err error) {
	if s == nil {
		return fmt.Errorf("AdminService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "EnsureAdmin")
	admins, listErr := s.users.ListUsers(ctx, persistence.UserFilter{Role: string(RoleAdmin)})
	if listErr != nil {
		return listErr
	}
	if len(admins) > 0 {
		return nil
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return fmt.Errorf("bootstrap admin credentials not configured")
	}

	hash, hashErr := s.hashPassword(password)
	if hashErr != nil {
		return hashErr
	}

	now := s.now()
	admin := persistence.User{
		ID:           s.idGenerator(),
		FullName:     "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         string(RoleAdmin),
		IsApproved:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = s.users.CreateUser(ctx, admin); err != nil {
		return err
	}

	logger.InfoContext(ctx, "bootstrap admin created", "email", email)
	return nil
}

// staffUser loads a user and requires it to be a clinic staff account.
func (s *AdminService) staffUser(ctx context.Context, userID string) (persistence.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.User{}, ErrNotFound
		}
		return persistence.User{}, err
	}
	if Role(user.Role) != RoleClinicStaff {
		return persistence.User{}, ErrNotFound
	}
	return user, nil
}
