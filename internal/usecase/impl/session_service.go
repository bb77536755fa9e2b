// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "booklib/internal/delivery/context"
	"booklib/internal/domain/entity"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/domain/repository"
	"booklib/internal/domain/service"
	"booklib/internal/errors"
	"booklib/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	opRegister     = "register"
	opLogin        = "login"
	opRefresh      = "refresh"
	opAuthenticate = "authenticate"

	bearerPrefix = "Bearer "
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager    repository.TransactionManager
	hasher       service.PasswordHasher
	tokenService service.TokenService
	clock        service.Clock
	metrics      service.MetricsRecorder
	logger       *slog.Logger

	// dummyHash is checked against on an unknown email so that path costs one bcrypt
	// comparison, like a wrong password.
	dummyHash string
}

// SessionServiceParams holds dependencies for SessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Clock        service.Clock
	Metrics      service.MetricsRecorder
	Logger       *slog.Logger
}

// NewSessionService is the constructor for sessionService. It hashes a random password once
// with the configured cost for the unknown-email login path.
func NewSessionService(params SessionServiceParams) (usecase.SessionUsecase, error) {
	dummyHash, err := params.Hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare login hash")
	}

	return &sessionService{
		txManager:    params.TxManager,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		clock:        params.Clock,
		metrics:      params.Metrics,
		logger:       params.Logger,
		dummyHash:    dummyHash,
	}, nil
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *sessionService) record(operation string, err error) {
	outcome := service.OutcomeSuccess
	if err != nil {
		outcome = service.OutcomeFailure
	}
	srv.metrics.RecordAuth(operation, outcome)
}

// Register creates the account and signs it in.
func (srv *sessionService) Register(ctx context.Context, input *usecase.RegisterInput) (output *usecase.AuthOutput, err error) {
	defer func() { srv.record(opRegister, err) }()

	srv.log(ctx).Debug("Starting registration", slog.String("email", input.Email))

	// 1. Local checks first so a rejected request never reaches the store.
	if input.Password != input.ConfirmPassword {
		return nil, errors.Wrap(domainerrors.ErrPasswordMismatch, "registration rejected")
	}
	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", input.Email))

		return nil, errors.Wrap(err, "registration rejected")
	}

	// 2. Hash outside the transaction (bcrypt is CPU-bound).
	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         entity.RoleUser,
	}

	var pair *entity.TokenPair
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		// 3. Uniqueness of username and email.
		taken, err := userRepo.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
		if err != nil {
			return errors.Wrap(err, "failed to check identity")
		}
		if taken {
			return errors.Wrap(domainerrors.ErrDuplicateIdentity, "registration rejected")
		}

		if err := userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrUserAlreadyExists) {
				return errors.Wrap(domainerrors.ErrDuplicateIdentity, "registration rejected")
			}

			return errors.Wrap(err, "failed to create user")
		}

		// 4. Issue and record the first token pair.
		pair, err = srv.issuePair(ctx, repoFactory.TokenRepo(), user)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to register")
	}
	srv.log(ctx).Info("User registered", slog.Any("user_id", user.ID))

	return &usecase.AuthOutput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

// Login verifies the credentials, revokes every valid token of the user and issues a fresh pair.
// An unknown email and a wrong password produce the same error after one bcrypt comparison each.
func (srv *sessionService) Login(ctx context.Context, input *usecase.LoginInput) (output *usecase.AuthOutput, err error) {
	defer func() { srv.record(opLogin, err) }()

	srv.log(ctx).Debug("Starting user login", slog.String("email", input.Email))

	// 1. Load the credentials from the primary.
	var user *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var findErr error
		user, findErr = repoFactory.UserRepo().FindByEmail(ctx, input.Email)

		return findErr
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.hasher.Check(input.Password, srv.dummyHash)
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to load login user")
	}

	// 2. Check password outside transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	// 3. Rotate under the user's row lock.
	var pair *entity.TokenPair
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().AcquireUserLock(ctx, user.ID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
			}

			return errors.Wrap(err, "failed to lock user")
		}

		tokenRepo := repoFactory.TokenRepo()
		revoked, err := tokenRepo.RevokeAllValid(ctx, user.ID)
		if err != nil {
			return errors.Wrap(err, "failed to revoke tokens")
		}
		srv.log(ctx).Debug("Revoked previous tokens", slog.Any("user_id", user.ID), slog.Int64("count", revoked))

		pair, err = srv.issuePair(ctx, tokenRepo, user)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to log in")
	}
	srv.log(ctx).Debug("User logged in successfully", slog.Any("user_id", user.ID))

	return &usecase.AuthOutput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

// Refresh revokes the user's valid access tokens and issues a new one. The presented refresh token
// stays valid and is handed back unchanged.
//
// A missing or malformed Authorization header is deliberately a silent no-op.
func (srv *sessionService) Refresh(ctx context.Context, authorizationHeader string, out usecase.TokenWriter) (err error) {
	refreshToken, ok := parseBearer(authorizationHeader)
	if !ok {
		srv.log(ctx).Debug("Refresh skipped: no bearer token")
		srv.metrics.RecordAuth(opRefresh, service.OutcomeNoop)

		return nil
	}
	defer func() { srv.record(opRefresh, err) }()

	claims, err := srv.tokenService.ParseClaims(refreshToken)
	if err != nil {
		return errors.Wrap(err, "invalid refresh token")
	}
	if claims.Kind != entity.TokenKindRefresh {
		return errors.Wrap(domainerrors.ErrInvalidToken, "not a refresh token")
	}

	var pair *entity.TokenPair
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		tokenRepo := repoFactory.TokenRepo()

		// 1. The subject must still exist.
		user, err := userRepo.FindByEmail(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUnknownSubject, "refresh token subject")
			}

			return errors.Wrap(err, "failed to find user")
		}
		if err := userRepo.AcquireUserLock(ctx, user.ID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUnknownSubject, "refresh token subject")
			}

			return errors.Wrap(err, "failed to lock user")
		}

		// 2. Cryptographic validity plus the ledger entry, checked after the lock so a
		// concurrent login that revoked the token is observed.
		if !srv.tokenService.IsValid(refreshToken, user) {
			return errors.Wrap(domainerrors.ErrInvalidToken, "refresh token does not belong to subject")
		}
		if err := srv.checkLedger(ctx, tokenRepo, refreshToken, user.ID, entity.TokenKindRefresh); err != nil {
			return err
		}

		// 3. Rotate the access token only.
		if _, err := tokenRepo.RevokeAllValid(ctx, user.ID, entity.TokenKindAccess); err != nil {
			return errors.Wrap(err, "failed to revoke access tokens")
		}
		access, err := srv.issueAndRecord(ctx, tokenRepo, user, entity.TokenKindAccess)
		if err != nil {
			return err
		}

		pair = &entity.TokenPair{AccessToken: access, RefreshToken: refreshToken}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Refresh failed", slog.Any("error", err))

		return errors.Wrap(err, "failed to refresh token")
	}

	if err := out.WriteTokens(pair); err != nil {
		return errors.Wrap(err, "failed to write refreshed tokens")
	}

	return nil
}

// Authenticate accepts an access token only when its signature and expiry check out, its owner still
// exists under the same email and the ledger holds a valid access entry for it.
func (srv *sessionService) Authenticate(ctx context.Context, accessToken string) (principal *usecase.Principal, err error) {
	defer func() {
		if err != nil {
			srv.metrics.RecordAuth(opAuthenticate, service.OutcomeFailure)
		}
	}()

	claims, err := srv.tokenService.ParseClaims(accessToken)
	if err != nil {
		return nil, errors.Wrap(err, "invalid access token")
	}
	if claims.Kind != entity.TokenKindAccess || claims.UserID == nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidToken, "not an access token")
	}

	// Replicas may lag behind a revocation committed by login, so the ledger is read on the primary.
	err = srv.txManager.ReadPrimary(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByID(ctx, *claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrInvalidToken, "token owner no longer exists")
			}

			return errors.Wrap(err, "failed to find user")
		}
		if user.Email != claims.Subject {
			return errors.Wrap(domainerrors.ErrInvalidToken, "token subject does not match owner")
		}

		if err := srv.checkLedger(ctx, repoFactory.TokenRepo(), accessToken, user.ID, entity.TokenKindAccess); err != nil {
			return err
		}

		principal = &usecase.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return principal, nil
}

// ExpireStaleTokens moves valid ledger entries past their expiry to Expired.
func (srv *sessionService) ExpireStaleTokens(ctx context.Context) (int64, error) {
	var expired int64
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		expired, err = repoFactory.TokenRepo().ExpireStale(ctx, srv.clock.Now())

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to expire stale tokens", slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to expire stale tokens")
	}
	srv.metrics.RecordLedgerSweep(expired)
	if expired > 0 {
		srv.log(ctx).Info("Expired stale tokens", slog.Int64("count", expired))
	}

	return expired, nil
}

// checkLedger requires a usable ledger entry of the given kind owned by userID.
func (srv *sessionService) checkLedger(ctx context.Context, tokenRepo repository.TokenRepository, token string, userID uuid.UUID, kind entity.TokenKind) error {
	entry, err := tokenRepo.FindByHash(ctx, srv.tokenService.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return errors.Wrap(domainerrors.ErrInvalidToken, "token is not in the ledger")
		}

		return errors.Wrap(err, "failed to look up token")
	}

	switch {
	case entry.UserID != userID:
		return errors.Wrap(domainerrors.ErrInvalidToken, "token belongs to another user")
	case entry.Kind != kind:
		return errors.Wrapf(domainerrors.ErrInvalidToken, "ledger entry is a %s token", entry.Kind)
	case !entry.IsUsable(srv.clock.Now()):
		return errors.Wrapf(domainerrors.ErrInvalidToken, "token is %s", strings.ToLower(string(entry.Status)))
	}

	return nil
}

// issuePair signs and records an access and a refresh token for user.
func (srv *sessionService) issuePair(ctx context.Context, tokenRepo repository.TokenRepository, user *entity.User) (*entity.TokenPair, error) {
	access, err := srv.issueAndRecord(ctx, tokenRepo, user, entity.TokenKindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := srv.issueAndRecord(ctx, tokenRepo, user, entity.TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	return &entity.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (srv *sessionService) issueAndRecord(ctx context.Context, tokenRepo repository.TokenRepository, user *entity.User, kind entity.TokenKind) (string, error) {
	var (
		issued *service.IssuedToken
		err    error
	)
	if kind == entity.TokenKindAccess {
		issued, err = srv.tokenService.IssueAccessToken(user)
	} else {
		issued, err = srv.tokenService.IssueRefreshToken(user)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to issue %s token", kind)
	}

	if err := tokenRepo.Create(ctx, &entity.Token{
		UserID:    user.ID,
		TokenHash: srv.tokenService.HashToken(issued.Value),
		Type:      entity.TokenTypeBearer,
		Kind:      kind,
		Status:    entity.TokenStatusValid,
		ExpiresAt: issued.ExpiresAt,
	}); err != nil {
		return "", errors.Wrapf(err, "failed to record %s token", kind)
	}

	return issued.Value, nil
}

// parseBearer extracts the token from an "Authorization: Bearer <token>" value.
func parseBearer(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)

	return token, token != ""
}
