// internal/service/user/user.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/user"
	xerrors "edman-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context, role user.Role) ([]user.User, error)
	UpdateWithTx(ctx context.Context, tx pgx.Tx, u *user.User) error
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id string) error
}

type CenterStore interface {
	FindByUserID(ctx context.Context, userID string) (*catalog.Center, error)
	UpdateWithTx(ctx context.Context, tx pgx.Tx, c *catalog.Center) error
	DeleteByUserIDWithTx(ctx context.Context, tx pgx.Tx, userID string) error
}

// AccountCreator is satisfied by the auth service, which owns password
// hashing and the user+center insert.
type AccountCreator interface {
	CreateAccount(ctx context.Context, email, password, name string, role user.Role, phone string) (*user.User, error)
}

type UserService struct {
	db       TxBeginner
	users    UserStore
	centers  CenterStore
	accounts AccountCreator
	logger   *zap.Logger
}

func NewUserService(db TxBeginner, users UserStore, centers CenterStore, accounts AccountCreator, logger *zap.Logger) *UserService {
	return &UserService{
		db:       db,
		users:    users,
		centers:  centers,
		accounts: accounts,
		logger:   logger,
	}
}

func (s *UserService) List(ctx context.Context, filters *user.ListFilters) ([]user.UserInfo, error) {
	if filters.Role != "" && !filters.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", filters.Role, xerrors.ErrInvalidInput)
	}
	users, err := s.users.List(ctx, filters.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]user.UserInfo, 0, len(users))
	for i := range users {
		out = append(out, users[i].Info())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*user.UserInfo, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("user not found: %w", xerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	info := u.Info()
	return &info, nil
}

// Create lets an admin add any role, ADMIN included.
func (s *UserService) Create(ctx context.Context, adminID string, req *user.CreateUserRequest) (*user.UserInfo, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, xerrors.ErrInvalidInput)
	}
	u, err := s.accounts.CreateAccount(ctx, req.Email, req.Password, req.Name, req.Role, req.Phone)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created by admin",
		zap.String("admin_id", adminID),
		zap.String("user_id", u.ID),
		zap.String("role", string(u.Role)),
	)
	info := u.Info()
	return &info, nil
}

// Update applies a partial update. CENTER users have their center's name,
// email and phone kept in sync in the same transaction.
func (s *UserService) Update(ctx context.Context, id string, req *user.UpdateUserRequest) (*user.UserInfo, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("user not found: %w", xerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, fmt.Errorf("unknown role %q: %w", *req.Role, xerrors.ErrInvalidInput)
		}
		u.Role = *req.Role
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != u.Email {
			if _, err := s.users.FindByEmail(ctx, email); err == nil {
				return nil, fmt.Errorf("email already in use: %w", xerrors.ErrInvalidInput)
			} else if !errors.Is(err, xerrors.ErrNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			u.Email = email
		}
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			u.Phone = nil
		} else {
			u.Phone = &phone
		}
	}

	// Shorter passwords are ignored rather than rejected.
	if req.Password != nil && len(*req.Password) >= 6 {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = string(hashed)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.users.UpdateWithTx(ctx, tx, u); err != nil {
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil, fmt.Errorf("email already in use: %w", xerrors.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if u.Role == user.RoleCenter {
		center, err := s.centers.FindByUserID(ctx, u.ID)
		switch {
		case errors.Is(err, xerrors.ErrNotFound):
			// role changed to CENTER without a center row; nothing to sync
		case err != nil:
			return nil, fmt.Errorf("failed to load center: %w", err)
		default:
			center.Name = u.Name
			center.Email = &u.Email
			center.Phone = u.Phone
			if err := s.centers.UpdateWithTx(ctx, tx, center); err != nil {
				return nil, fmt.Errorf("failed to sync center: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit user update: %w", err)
	}

	s.logger.Info("user updated", zap.String("user_id", u.ID))
	info := u.Info()
	return &info, nil
}

// Delete removes a user and, for CENTER users, their center. Admins cannot
// delete themselves.
func (s *UserService) Delete(ctx context.Context, adminID, id string) error {
	if adminID == id {
		return fmt.Errorf("cannot delete your own account: %w", xerrors.ErrInvalidInput)
	}

	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return fmt.Errorf("user not found: %w", xerrors.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if u.Role == user.RoleCenter {
		if err := s.centers.DeleteByUserIDWithTx(ctx, tx, u.ID); err != nil && !errors.Is(err, xerrors.ErrNotFound) {
			return fmt.Errorf("failed to delete center: %w", err)
		}
	}
	if err := s.users.DeleteWithTx(ctx, tx, u.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user deletion: %w", err)
	}

	s.logger.Info("user deleted", zap.String("admin_id", adminID), zap.String("user_id", id))
	return nil
}
