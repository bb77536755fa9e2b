package impl

import (
	"context"
	"log/slog"

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

// userService implements the UserUsecase interface.
type userService struct {
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	clock     service.Clock
	events    *eventEmitter
	logger    *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Hasher    service.PasswordHasher
	Clock     service.Clock
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager: params.TxManager,
		hasher:    params.Hasher,
		clock:     params.Clock,
		events:    &eventEmitter{publisher: params.Publisher, clock: params.Clock, logger: params.Logger},
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile returns the account of userID.
func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Read(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		user, err = repoFactory.UserRepo().FindByID(ctx, userID)

		return err
	})
	if err != nil {
		return nil, mapUserError(err, "failed to get profile")
	}

	return user, nil
}

// UpdateProfile applies the non-nil fields of update. Validation happens before anything is written,
// so a rejected update leaves the stored record untouched.
func (srv *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, update *entity.ProfileUpdate) error {
	srv.log(ctx).Debug("Updating profile", slog.Any("user_id", userID))

	// 1. Validate the request.
	if update.DateOfBirth != nil && update.DateOfBirth.After(srv.clock.Now()) {
		return errors.Wrap(domainerrors.ErrValidationFailed.WithDetails("dateOfBirth must not be in the future"), "profile update rejected")
	}

	var newHash string
	if update.Password != nil && *update.Password != "" {
		if err := srv.hasher.ValidatePasswordStrength(*update.Password); err != nil {
			srv.log(ctx).Warn("Password validation failed during profile update", slog.Any("user_id", userID))

			return errors.Wrap(err, "profile update rejected")
		}

		// 2. Hash outside the transaction (bcrypt is CPU-bound).
		var err error
		newHash, err = srv.hasher.Hash(*update.Password)
		if err != nil {
			return errors.Wrap(err, "failed to hash password")
		}
	}

	// 3. Apply and persist.
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		user.Apply(update)
		if newHash != "" {
			user.PasswordHash = newHash
		}

		return userRepo.Update(ctx, user)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to update profile", slog.Any("user_id", userID), slog.Any("error", err))

		return mapUserError(err, "failed to update profile")
	}
	srv.log(ctx).Info("Profile updated", slog.Any("user_id", userID))

	return nil
}

// DeleteAccount removes the user. The store cascades the ledger entries and favorite edges,
// so every token of the user stops authenticating.
func (srv *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Deleting account", slog.Any("user_id", userID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.UserRepo().Delete(ctx, userID)
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to delete account", slog.Any("user_id", userID), slog.Any("error", err))

		return mapUserError(err, "failed to delete account")
	}

	srv.events.emit(ctx, service.EventAccountDeleted, userID, "")

	return nil
}

// mapUserError translates a missing user into the domain error and wraps everything else.
func mapUserError(err error, msg string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return errors.Wrap(domainerrors.ErrUserNotFound, msg)
	}

	return errors.Wrap(err, msg)
}
