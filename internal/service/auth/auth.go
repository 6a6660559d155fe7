// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/user"
	xerrors "edman-service/internal/pkg/errors"
	"edman-service/internal/pkg/jwt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type UserStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, u *user.User) error
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	CountByRole(ctx context.Context, role user.Role) (int, error)
}

type CenterStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, c *catalog.Center) error
	FindByUserID(ctx context.Context, userID string) (*catalog.Center, error)
}

type CourseStore interface {
	Create(ctx context.Context, c *catalog.Course) error
}

// TokenStore is the revocation list of logged-out tokens.
type TokenStore interface {
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	BlacklistToken(ctx context.Context, jti string, expiresAt time.Time) error
}

type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
}

type AuthService struct {
	db          TxBeginner
	users       UserStore
	centers     CenterStore
	courses     CourseStore
	jwtManager  *jwt.Manager
	tokens      TokenStore
	rateLimiter LoginLimiter
	logger      *zap.Logger
}

func NewAuthService(
	db TxBeginner,
	users UserStore,
	centers CenterStore,
	courses CourseStore,
	jwtManager *jwt.Manager,
	tokens TokenStore,
	rateLimiter LoginLimiter,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		db:          db,
		users:       users,
		centers:     centers,
		courses:     courses,
		jwtManager:  jwtManager,
		tokens:      tokens,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// ========== Registration ==========

// Register creates an AGENT or CENTER account. A CENTER account gets its
// center row in the same transaction.
func (s *AuthService) Register(ctx context.Context, req *user.RegisterRequest) (*user.UserInfo, error) {
	if !req.Role.SelfRegistrable() {
		return nil, fmt.Errorf("role must be AGENT or CENTER: %w", xerrors.ErrInvalidInput)
	}

	u, err := s.CreateAccount(ctx, req.Email, req.Password, req.Name, req.Role, req.Phone)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID),
		zap.String("email", u.Email),
		zap.String("role", string(u.Role)),
	)
	info := u.Info()
	return &info, nil
}

// CreateAccount hashes the password and inserts the user, plus a center
// for CENTER users, in one transaction.
func (s *AuthService) CreateAccount(ctx context.Context, email, password, name string, role user.Role, phone string) (*user.User, error) {
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", xerrors.ErrInvalidInput)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", xerrors.ErrInvalidInput)
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashed),
		Name:         strings.TrimSpace(name),
		Role:         role,
		Phone:        optional(phone),
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.users.CreateWithTx(ctx, tx, u); err != nil {
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil, fmt.Errorf("email already registered: %w", xerrors.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if role == user.RoleCenter {
		center := &catalog.Center{
			Name:          u.Name,
			ContactPerson: &u.Name,
			Phone:         u.Phone,
			Email:         &u.Email,
			UserID:        u.ID,
		}
		if err := s.centers.CreateWithTx(ctx, tx, center); err != nil {
			return nil, fmt.Errorf("failed to create center: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}
	return u, nil
}

// ========== Login ==========

func (s *AuthService) Login(ctx context.Context, req *user.LoginRequest) (*user.LoginResponse, error) {
	allowed, remaining, err := s.rateLimiter.CheckLoginAttempt(ctx, req.IPAddress, req.Email)
	if err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("too many login attempts, please try again in 15 minutes: %w", xerrors.ErrRateLimited)
	}

	u, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", xerrors.ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("failed login attempt",
			zap.String("email", u.Email),
			zap.String("ip", req.IPAddress),
			zap.Int64("remaining", remaining),
		)
		return nil, fmt.Errorf("invalid credentials: %w", xerrors.ErrUnauthenticated)
	}

	if err := s.rateLimiter.ResetLoginAttempts(ctx, req.IPAddress, req.Email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	tok, err := s.jwtManager.Generator.Generate(u.Principal())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))

	return &user.LoginResponse{
		Token:     tok.Value,
		ExpiresAt: tok.ExpiresAt,
		User:      u.Info(),
	}, nil
}

// ========== Session ==========

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, userID, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	if err := s.tokens.BlacklistToken(ctx, jti, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("user logged out", zap.String("user_id", userID))
	return nil
}

// ValidateToken verifies the signature and expiry and checks the revocation
// list.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtManager.Verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v: %w", err, xerrors.ErrSessionExpired)
	}

	blacklisted, err := s.tokens.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if blacklisted {
		return nil, fmt.Errorf("token has been revoked: %w", xerrors.ErrSessionExpired)
	}
	return claims, nil
}

// Me returns the current user, or NotFound if the account was deleted after
// the token was issued.
func (s *AuthService) Me(ctx context.Context, userID string) (*user.UserInfo, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("user not found: %w", xerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	info := u.Info()
	return &info, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
