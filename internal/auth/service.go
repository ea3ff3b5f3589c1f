package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baxeinwear/storefront-backend/internal/users"
	pkgAuth "github.com/baxeinwear/storefront-backend/pkg/auth"
	"github.com/baxeinwear/storefront-backend/pkg/auth/session"
	"github.com/baxeinwear/storefront-backend/pkg/config"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/security"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	users   userRepository
	session sessionManager
	jwtCfg  config.JWTConfig
	now     func() time.Time
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		users:   params.UserRepo,
		session: params.SessionManager,
		jwtCfg:  params.JWTConfig,
		now:     time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	account, err := users.AccountFromUser(user)
	if err != nil {
		return nil, err
	}

	token, refresh, err := s.openSession(ctx, account)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		User:         users.FromAccount(account),
		ProfileType:  account.Role().ProfileType(),
		Token:        token,
		RefreshToken: refresh,
	}, nil
}

// openSession mints the access token and registers its jti so the token can
// be revoked on logout.
func (s *service) openSession(ctx context.Context, account *users.Account) (string, string, error) {
	jti := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:    account.User.ID,
		Role:      account.Role(),
		ProfileID: account.ProfileID(),
		JTI:       jti,
	})
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "signing access token")
	}
	refresh, err := s.session.Generate(ctx, jti)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "session store unavailable")
	}
	return token, refresh, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "session store unavailable")
	}
	return nil
}

// authenticate answers every credential mismatch with the same message so
// callers cannot probe which e-mails are registered.
func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	rejected := pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)

	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || password == "" {
		return nil, rejected
	}
	user, err := s.users.FindByEmail(ctx, normalized)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, rejected
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up account")
	}

	match, err := security.VerifyPassword(password, user.PasswordHash)
	switch {
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stored password hash is unreadable")
	case !match:
		return nil, rejected
	}
	return user, nil
}
