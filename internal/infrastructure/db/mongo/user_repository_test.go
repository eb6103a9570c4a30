package mongo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/tokobaju/storefront/internal/core/domain"
)

func newMockUser() *domain.User {
	now := time.Date(2026, 2, 15, 16, 6, 44, 0, time.UTC)
	return &domain.User{
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: "$2a$12$hash",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_Insert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stores the user", func(mt *mtest.T) {
		repo := &UserRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := repo.Insert(context.Background(), newMockUser())
		if err != nil {
			mt.Fatalf("Insert returned error: %v", err)
		}
		if user.ID == "" {
			mt.Fatalf("expected the generated id to be set")
		}
		if user.Username != "alice" || user.Role != domain.RoleUser {
			mt.Fatalf("unexpected user: %+v", user)
		}
	})

	mt.Run("duplicate key maps to ErrDuplicateKey", func(mt *mtest.T) {
		repo := &UserRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: storefront.users index: uniq_email",
		}))

		_, err := repo.Insert(context.Background(), newMockUser())
		if !errors.Is(err, domain.ErrDuplicateKey) {
			mt.Fatalf("expected ErrDuplicateKey, got %v", err)
		}
	})

	mt.Run("other write errors are wrapped", func(mt *mtest.T) {
		repo := &UserRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    121,
			Message: "Document failed validation",
		}))

		_, err := repo.Insert(context.Background(), newMockUser())
		if err == nil {
			mt.Fatalf("expected error")
		}
		if errors.Is(err, domain.ErrDuplicateKey) {
			mt.Fatalf("validation failures must not look like duplicates")
		}
		if !strings.HasPrefix(err.Error(), "insert user: ") {
			mt.Fatalf("expected wrapped insert error, got %q", err)
		}
	})
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("empty cursor", func(mt *mtest.T) {
		repo := &UserRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.users", mtest.FirstBatch))

		if _, err := repo.FindByEmail(context.Background(), "ghost@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserRepository_FindByID_MalformedID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no round trip", func(mt *mtest.T) {
		repo := &UserRepository{coll: mt.Coll}

		if _, err := repo.FindByID(context.Background(), "not-hex"); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
