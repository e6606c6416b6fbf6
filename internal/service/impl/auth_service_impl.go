package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"voting/internal/domain"
	"voting/internal/dto"
	"voting/internal/observability/metrics"
	"voting/internal/observability/middleware"
	"voting/internal/service"
	"voting/internal/store"
	"voting/internal/validation"
)

type AuthServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	TService        service.TokenService
	now             func() time.Time
}

func NewAuthServiceImpl(st *store.Store, passwordService service.PasswordService, tokenService service.TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{
		Store:           gormStoreAdapter{store: st},
		PasswordService: passwordService,
		TService:        tokenService,
		now:             time.Now,
	}
}

type dataStore interface {
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
}

type storeTx interface {
	Users() userStore
	Credentials() credentialStore
	Sessions() sessionStore
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByCPF(ctx context.Context, cpf string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetActive(ctx context.Context, userID uint, active bool) error
}

type credentialStore interface {
	UpsertPassword(ctx context.Context, c *domain.PasswordCredential) error
	GetPasswordByUserID(ctx context.Context, userID uint) (*domain.PasswordCredential, error)
}

type sessionStore interface {
	RevokeAllForUser(ctx context.Context, userID uint, at time.Time) (int64, error)
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return errors.New("nil store")
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Users() userStore { return g.tx.Users() }

func (g gormTxAdapter) Credentials() credentialStore { return g.tx.Credentials() }

func (g gormTxAdapter) Sessions() sessionStore { return g.tx.Sessions() }

func (a *AuthServiceImpl) clock() time.Time {
	if a.now == nil {
		return time.Now().UTC()
	}
	return a.now().UTC()
}

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest, ip, ua string) (*dto.AuthResponse, error) {
	result := "failure"
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc()
	}()

	user, err := a.createUser(ctx, r, false)
	if err != nil {
		return nil, err
	}

	// Tokens are minted after commit so the session row never outlives a
	// rolled back user.
	tokens, err := a.TService.Issue(ctx, user, ip, ua)
	if err != nil {
		return nil, err
	}

	result = "success"
	slog.Info("user registered", append([]any{"user_id", user.ID}, middleware.LogAttrs(ctx)...)...)
	return &dto.AuthResponse{
		Message: "User registered successfully.",
		User:    dto.NewUserResponse(user),
		Token:   tokens.Token,
		Refresh: tokens.Refresh,
	}, nil
}

func (a *AuthServiceImpl) CreateSuperuser(ctx context.Context, r dto.RegisterRequest) (*domain.User, error) {
	user, err := a.createUser(ctx, r, true)
	if err != nil {
		return nil, err
	}
	slog.Info("superuser created", "user_id", user.ID)
	return user, nil
}

func (a *AuthServiceImpl) createUser(ctx context.Context, r dto.RegisterRequest, superuser bool) (*domain.User, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.CPF = domain.NormalizeCPF(r.CPF)
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		if email == "" {
			r.Email = nil
		} else {
			r.Email = &email
		}
	}
	if err := validation.Struct(msgInvalidInput, r); err != nil {
		return nil, err
	}

	var user *domain.User
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		if err := ensureFree(tx.Users().GetByCPF(ctx, r.CPF)); err != nil {
			return fieldTaken(err, "cpf", msgCPFTaken)
		}
		if r.Email != nil {
			if err := ensureFree(tx.Users().GetByEmail(ctx, *r.Email)); err != nil {
				return fieldTaken(err, "email", msgEmailTaken)
			}
		}

		now := a.clock()
		u := &domain.User{
			Name:        r.Name,
			CPF:         r.CPF,
			Email:       r.Email,
			IsStaff:     superuser,
			IsSuperuser: superuser,
			IsActive:    true,
			DateJoined:  now,
			UpdatedAt:   now,
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				return errTaken
			}
			return fmt.Errorf("create user: %w", err)
		}

		hash, salt, paramsJSON, algo, ver, err := a.PasswordService.Hash(r.Password)
		if err != nil {
			return err
		}
		cred := &domain.PasswordCredential{
			UserID:      u.ID,
			Algo:        algo,
			Hash:        hash,
			Salt:        salt,
			ParamsJSON:  paramsJSON,
			PasswordVer: ver,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Credentials().UpsertPassword(ctx, cred); err != nil {
			return fmt.Errorf("store password: %w", err)
		}
		user = u
		return nil
	})
	if errors.Is(err, errTaken) {
		return nil, a.takenField(ctx, r)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// takenField reports which unique field a concurrent registration claimed
// between the availability checks and the insert.
func (a *AuthServiceImpl) takenField(ctx context.Context, r dto.RegisterRequest) error {
	var taken error
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		if err := ensureFree(tx.Users().GetByCPF(ctx, r.CPF)); err != nil {
			taken = fieldTaken(err, "cpf", msgCPFTaken)
			return nil
		}
		if r.Email != nil {
			if err := ensureFree(tx.Users().GetByEmail(ctx, *r.Email)); err != nil {
				taken = fieldTaken(err, "email", msgEmailTaken)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if taken != nil {
		return taken
	}
	return domain.Validation(msgInvalidInput, map[string][]string{
		"non_field_errors": {"A user with these details already exists."},
	})
}

// errTaken marks a lookup or insert that hit an existing row.
var errTaken = errors.New("taken")

func ensureFree(_ *domain.User, err error) error {
	switch {
	case err == nil:
		return errTaken
	case errors.Is(err, store.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}

func fieldTaken(err error, field, msg string) error {
	if errors.Is(err, errTaken) {
		return domain.FieldError(field, msg)
	}
	return err
}

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.AuthResponse, error) {
	result := "failure"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	cpf := domain.NormalizeCPF(r.CPF)
	if cpf == "" || r.Password == "" {
		return nil, loginFailed(msgMissingCredentials)
	}

	var user *domain.User
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByCPF(ctx, cpf)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrInvalidCredentials
			}
			return err
		}
		cred, err := tx.Credentials().GetPasswordByUserID(ctx, u.ID)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrInvalidCredentials
			}
			return err
		}

		rehashNeeded, ok := a.PasswordService.Verify(r.Password, cred)
		if !ok {
			return domain.ErrInvalidCredentials
		}
		if !u.IsActive {
			return domain.ErrUserDisabled
		}

		if rehashNeeded {
			newHash, newSalt, newParamsJSON, algo, ver, err := a.PasswordService.Hash(r.Password)
			if err != nil {
				return err
			}
			cred.Algo = algo
			cred.Hash = newHash
			cred.Salt = newSalt
			cred.ParamsJSON = newParamsJSON
			cred.PasswordVer = ver
			cred.UpdatedAt = a.clock()
			if err := tx.Credentials().UpsertPassword(ctx, cred); err != nil {
				return err
			}
		}
		user = u
		return nil
	})
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return nil, loginFailed(msgBadCredentials)
	case errors.Is(err, domain.ErrUserDisabled):
		return nil, loginFailed(msgUserDisabled)
	case err != nil:
		return nil, err
	}

	tokens, err := a.TService.Issue(ctx, user, ip, ua)
	if err != nil {
		return nil, err
	}

	result = "success"
	return &dto.AuthResponse{
		Message: "Login successful.",
		User:    dto.NewUserResponse(user),
		Token:   tokens.Token,
		Refresh: tokens.Refresh,
	}, nil
}

func loginFailed(msg string) error {
	return domain.Validation(msgLoginFailed, map[string][]string{"non_field_errors": {msg}})
}

func (a *AuthServiceImpl) Authenticate(ctx context.Context, accessToken string) (domain.Caller, error) {
	if accessToken == "" {
		return domain.Caller{}, domain.Unauthenticated("authentication required")
	}
	userID, err := a.TService.Verify(ctx, accessToken)
	if err != nil {
		return domain.Caller{}, domain.Unauthenticated(msgInvalidToken)
	}

	var caller domain.Caller
	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.Unauthenticated(msgInvalidToken)
			}
			return err
		}
		if !u.IsActive {
			return domain.Unauthenticated(msgUserDisabled)
		}
		caller = domain.CallerFor(u)
		return nil
	})
	return caller, err
}

func (a *AuthServiceImpl) Deactivate(ctx context.Context, cpf string) error {
	cpf = domain.NormalizeCPF(cpf)
	return a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByCPF(ctx, cpf)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.NotFound("user not found")
			}
			return err
		}
		if err := tx.Users().SetActive(ctx, u.ID, false); err != nil {
			return err
		}
		revoked, err := tx.Sessions().RevokeAllForUser(ctx, u.ID, a.clock())
		if err != nil {
			return err
		}
		slog.Info("user deactivated", "user_id", u.ID, "revoked_sessions", revoked)
		return nil
	})
}
