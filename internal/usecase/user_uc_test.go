//go:build !integration

package usecase

import (
	"context"
	"testing"

	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

func newUserUC(users *memUserRepo) *userUC {
	log := zerolog.Nop()
	return NewUserUseCase(users, &fakeTxManager{}, &log)
}

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a new user with the default language", func(t *testing.T) {
		users := newMemUserRepo()
		uc := newUserUC(users)

		u, err := uc.EnsureUser(ctx, 42, "anna", "Anna")
		if err != nil {
			t.Fatalf("EnsureUser: %v", err)
		}
		if u.ID == 0 {
			t.Error("user ID should be assigned")
		}
		if u.Language != model.DefaultLanguage {
			t.Errorf("expected default language, got %s", u.Language)
		}
	})

	t.Run("refreshes profile fields on repeat contact", func(t *testing.T) {
		users := newMemUserRepo()
		uc := newUserUC(users)

		first, err := uc.EnsureUser(ctx, 42, "anna", "Anna")
		if err != nil {
			t.Fatalf("EnsureUser: %v", err)
		}
		second, err := uc.EnsureUser(ctx, 42, "anna_new", "")
		if err != nil {
			t.Fatalf("EnsureUser: %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("repeat contact must not create a second user: %d vs %d", second.ID, first.ID)
		}
		if second.Username != "anna_new" {
			t.Errorf("username should be refreshed, got %s", second.Username)
		}
		if second.FirstName != "Anna" {
			t.Errorf("empty first name must not erase the stored one, got %q", second.FirstName)
		}
	})
}

func TestSetLanguageAndBlock(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	uc := newUserUC(users)

	u, err := uc.EnsureUser(ctx, 42, "anna", "Anna")
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	if err := uc.SetLanguage(ctx, 42, "pl"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	got, _ := uc.FindByTelegramID(ctx, 42)
	if got.Language != "pl" {
		t.Errorf("expected language pl, got %s", got.Language)
	}

	if err := uc.SetBlocked(ctx, u.ID, true); err != nil {
		t.Fatalf("SetBlocked: %v", err)
	}
	blocked, total, err := uc.List(ctx, repository.UsersBlocked, 0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(blocked) != 1 || !blocked[0].IsBlocked {
		t.Errorf("expected exactly one blocked user, got total=%d len=%d", total, len(blocked))
	}
}
