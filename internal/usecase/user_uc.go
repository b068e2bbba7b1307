package usecase

import (
	"context"
	"errors"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
	"telegram-storefront-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes user-related operations used by bot and admin flows.
type UserUseCase interface {
	// EnsureUser registers the user on first contact and refreshes the
	// profile fields on every later one.
	EnsureUser(ctx context.Context, tgID int64, username, firstName string) (*model.User, error)
	FindByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
	SetLanguage(ctx context.Context, tgID int64, lang string) error
	SetBlocked(ctx context.Context, userID int64, blocked bool) error
	List(ctx context.Context, filter repository.UserFilter, offset, limit int) ([]*model.User, int, error)
	Count(ctx context.Context) (int, error)
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, tm: tm, log: logger}
}

func (u *userUC) EnsureUser(ctx context.Context, tgID int64, username, firstName string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.EnsureUser")()

	var user *model.User
	// Read and write as one atomic operation so two parallel /start updates
	// cannot race each other into duplicate inserts.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByTelegramID(ctx, tx, tgID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if usr == nil {
			nu, err := model.NewUser(tgID, username, firstName)
			if err != nil {
				return err
			}
			if err := u.users.Save(ctx, tx, nu); err != nil {
				return err
			}
			u.log.Info().Int64("tg_id", tgID).Msg("registered new user")
			user = nu
			return nil
		}

		if username != "" {
			usr.Username = username
		}
		if firstName != "" {
			usr.FirstName = firstName
		}
		usr.Touch()
		if err := u.users.Save(ctx, tx, usr); err != nil {
			u.log.Error().Err(err).Int64("tg_id", tgID).Msg("failed to update user")
			return err
		}
		user = usr
		return nil
	})
	return user, err
}

func (u *userUC) FindByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.FindByTelegramID")()
	return u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

func (u *userUC) SetLanguage(ctx context.Context, tgID int64, lang string) error {
	defer logging.TraceDuration(u.log, "UserUC.SetLanguage")()
	usr, err := u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if err != nil {
		return err
	}
	return u.users.SetLanguage(ctx, repository.NoTX, usr.ID, lang)
}

func (u *userUC) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	defer logging.TraceDuration(u.log, "UserUC.SetBlocked")()
	if err := u.users.SetBlocked(ctx, repository.NoTX, userID, blocked); err != nil {
		return err
	}
	u.log.Info().Int64("user_id", userID).Bool("blocked", blocked).Msg("user block state changed")
	return nil
}

func (u *userUC) List(ctx context.Context, filter repository.UserFilter, offset, limit int) ([]*model.User, int, error) {
	defer logging.TraceDuration(u.log, "UserUC.List")()
	return u.users.List(ctx, repository.NoTX, filter, offset, limit)
}

func (u *userUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.Count")()
	return u.users.Count(ctx, repository.NoTX)
}
