package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	domain "signage-user-service/internal/domain/user"
	apperrors "signage-user-service/pkg/errors"
	"signage-user-service/pkg/logger"
	"signage-user-service/pkg/password"
)

// Repository defines the interface for user data access operations.
type Repository interface {
	// Exists reports whether a user with the given name is stored.
	Exists(ctx context.Context, name string) (bool, error)
	// Create stores a new user. It must fail with domain.ErrAlreadyExists
	// rather than overwrite, and with domain.ErrTooManyUsers when the
	// store is full.
	Create(ctx context.Context, u *domain.User) error
	// GetByName returns the stored user or domain.ErrNotFound.
	GetByName(ctx context.Context, name string) (*domain.User, error)
}

// TokenIssuer issues and verifies access tokens for user names.
type TokenIssuer interface {
	Issue(name string) (string, error)
	Parse(token string) (string, error)
	TTL() time.Duration
}

// Service implements the business logic for user management operations.
type Service struct {
	repo   Repository         // Repository for data access
	gen    password.Generator // Generator for initial passwords
	tokens TokenIssuer        // Access token issuer
	policy domain.Policy      // Provisioning policy for new accounts
	log    *zap.Logger        // Logger for structured logging
}

// New creates a new Service.
func New(r Repository, gen password.Generator, tokens TokenIssuer, policy domain.Policy, log *zap.Logger) *Service {
	return &Service{repo: r, gen: gen, tokens: tokens, policy: policy, log: log}
}

// CreateUser creates a new account on behalf of an administrator and
// returns it together with its generated password.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, s.log)

	if in.Caller == nil || !in.Caller.IsAdmin() {
		log.Warn("create user rejected: caller is not an admin", zap.String("name", in.Name))
		return nil, apperrors.New(apperrors.CodeNotAuthorized, "Not authorized.")
	}

	log.Info("creating user",
		zap.String("name", in.Name),
		zap.Strings("groups", in.Groups),
		zap.String("caller", in.Caller.Name),
	)

	// Early exit only; the store's create is the authoritative guard.
	exists, err := s.repo.Exists(ctx, in.Name)
	if err != nil {
		log.Error("failed to check existing user", zap.String("name", in.Name), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to look up user.", err)
	}
	if exists {
		log.Warn("user already exists", zap.String("name", in.Name))
		return nil, apperrors.New(apperrors.CodeInvalidRequest, "User already exists.")
	}

	return s.provision(ctx, log, domain.Draft{Name: in.Name, Groups: in.Groups})
}

// BootstrapAdmin creates an administrator without an authenticated caller.
// It is meant for local tooling with direct store access.
func (s *Service) BootstrapAdmin(ctx context.Context, in BootstrapAdminRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("bootstrapping admin user", zap.String("name", in.Name))

	return s.provision(ctx, log, domain.Draft{Name: in.Name, Groups: []string{domain.AdminGroup}})
}

func (s *Service) provision(ctx context.Context, log *zap.Logger, d domain.Draft) (*CreateUserResponse, error) {
	p, err := domain.Provision(d, s.gen, s.policy)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidName) || errors.Is(err, domain.ErrInvalidGroups) {
			log.Warn("user rejected by domain limits", zap.String("name", d.Name), zap.Error(err))
			return nil, apperrors.Wrap(apperrors.CodeLimited, "Limited.", err)
		}
		log.Error("failed to set up password", zap.String("name", d.Name), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to generate password.", err)
	}

	if err := s.repo.Create(ctx, p.User); err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManyUsers):
			log.Warn("user store is full", zap.String("name", d.Name))
			return nil, apperrors.Wrap(apperrors.CodeLimited, "Too many users.", err)
		case errors.Is(err, domain.ErrAlreadyExists):
			log.Warn("user created concurrently", zap.String("name", d.Name))
			return nil, apperrors.Wrap(apperrors.CodeInvalidRequest, "User already exists.", err)
		default:
			log.Error("failed to write user", zap.String("name", d.Name), zap.Error(err))
			return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to write user.", err)
		}
	}

	log.Info("user created", zap.String("name", p.User.Name), zap.Strings("groups", p.User.Groups))

	return &CreateUserResponse{
		User:     toDTO(p.User),
		Password: p.TakePassword(),
	}, nil
}

// GetUser returns a user. Callers may read themselves; admins may read anyone.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	log := logger.WithContext(ctx, s.log)

	if in.Caller == nil || (in.Caller.Name != in.Name && !in.Caller.IsAdmin()) {
		log.Warn("get user rejected", zap.String("name", in.Name))
		return nil, apperrors.New(apperrors.CodeNotAuthorized, "Not authorized.")
	}

	u, err := s.repo.GetByName(ctx, in.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeInvalidRequest, "User doesn't exist.", err)
		}
		log.Error("failed to get user", zap.String("name", in.Name), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to load user.", err)
	}

	return &GetUserResponse{User: toDTO(u)}, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	log := logger.WithContext(ctx, s.log)

	u, err := s.repo.GetByName(ctx, in.Name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Error("failed to load user for login", zap.String("name", in.Name), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to load user.", err)
	}
	if u == nil || !u.CheckPassword(in.Password) {
		log.Warn("login failed", zap.String("name", in.Name))
		return nil, apperrors.New(apperrors.CodeNotAuthenticated, "Invalid credentials.")
	}

	token, err := s.tokens.Issue(u.Name)
	if err != nil {
		log.Error("failed to issue token", zap.String("name", u.Name), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to issue token.", err)
	}

	log.Info("login succeeded", zap.String("name", u.Name))
	return &LoginResponse{Token: token, ExpiresIn: s.tokens.TTL()}, nil
}

// ResolveCaller turns an access token into the stored user it names.
func (s *Service) ResolveCaller(ctx context.Context, token string) (*Caller, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.CodeNotAuthenticated, "Authentication required.")
	}

	name, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotAuthenticated, "Invalid or expired token.", err)
	}

	u, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeNotAuthenticated, "Invalid or expired token.", err)
		}
		logger.WithContext(ctx, s.log).Error("failed to resolve caller", zap.String("name", name), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeInternal, "Failed to load user.", err)
	}

	return u, nil
}

func toDTO(u *domain.User) User {
	exp := u.Export()
	return User{Name: exp.Name, Groups: exp.Groups}
}
