package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestUserRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("create returns hex id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := repo.Create(context.Background(), &domain.User{Email: "a@x.com", Name: "A", Status: domain.StatusActive})
		require.NoError(mt, err)
		assert.True(mt, domain.IsValidID(id))
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		_, err := repo.Create(context.Background(), &domain.User{Email: "a@x.com"})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "email", Value: "a@x.com"},
			{Key: "name", Value: "A"},
			{Key: "role", Value: "admin"},
		}))

		u, err := repo.FindByEmail(context.Background(), "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), u.ID)
		assert.True(mt, u.IsAdmin())
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := repo.FindByEmail(context.Background(), "nobody@x.com")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "a@x.com"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "b@x.com"}},
		))

		users, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "b@x.com", users[1].Email)
	})

	mt.Run("update counts", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		status := domain.StatusBlocked
		res, err := repo.Update(context.Background(), "a@x.com", domain.UserPatch{Status: &status})
		require.NoError(mt, err)
		assert.Equal(mt, domain.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, res)
	})

	mt.Run("update with empty patch", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		_, err := repo.Update(context.Background(), "a@x.com", domain.UserPatch{})
		assert.ErrorIs(mt, err, domain.ErrInvalidInput)
	})
}

func TestTestRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewTestRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.tests", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "CBC"},
			{Key: "price", Value: 25.5},
			{Key: "slots", Value: 5},
			{Key: "booked", Value: 0},
		}))

		got, err := repo.FindByID(context.Background(), oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, "CBC", got.Name)
		assert.Equal(mt, 5, got.Slots)
		assert.Equal(mt, oid.Hex(), got.ID)
	})

	mt.Run("find by malformed id never reaches the store", func(mt *mtest.T) {
		repo := NewTestRepository(mt.DB)
		_, err := repo.FindByID(context.Background(), "not-hex")
		assert.ErrorIs(mt, err, domain.ErrInvalidID)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewTestRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.tests", mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrTestNotFound)
	})

	mt.Run("find by ids without valid ids", func(mt *mtest.T) {
		repo := NewTestRepository(mt.DB)
		got, err := repo.FindByIDs(context.Background(), []string{"x", "y"})
		require.NoError(mt, err)
		assert.Empty(mt, got)
	})

	mt.Run("find by ids", func(mt *mtest.T) {
		repo := NewTestRepository(mt.DB)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.tests", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: a}, {Key: "name", Value: "CBC"}},
			bson.D{{Key: "_id", Value: b}, {Key: "name", Value: "Lipid"}},
		))

		got, err := repo.FindByIDs(context.Background(), []string{a.Hex(), b.Hex()})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "Lipid", got[1].Name)
	})

	mt.Run("adjust slots", func(mt *mtest.T) {
		repo := NewTestRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		res, err := repo.AdjustSlots(context.Background(), primitive.NewObjectID().Hex(), -1, false)
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.ModifiedCount)
	})

	mt.Run("guarded adjust on a full test matches nothing", func(mt *mtest.T) {
		repo := NewTestRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		res, err := repo.AdjustSlots(context.Background(), primitive.NewObjectID().Hex(), -1, true)
		require.NoError(mt, err)
		assert.Zero(mt, res.MatchedCount)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewTestRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		res, err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.Zero(mt, res.DeletedCount)
	})

	mt.Run("create", func(mt *mtest.T) {
		repo := NewTestRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := repo.Create(context.Background(), &domain.Test{Name: "CBC", Slots: 5})
		require.NoError(mt, err)
		assert.True(mt, domain.IsValidID(id))
	})
}

func TestBookingRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("create", func(mt *mtest.T) {
		repo := NewBookingRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := repo.Create(context.Background(), &domain.Booking{
			ServiceID: primitive.NewObjectID().Hex(),
			Email:     "a@x.com",
			Status:    domain.BookingPending,
			Meta:      map[string]any{"phone": "555"},
			CreatedAt: time.Now(),
		})
		require.NoError(mt, err)
		assert.True(mt, domain.IsValidID(id))
	})

	mt.Run("list by email surfaces merged fields as meta", func(mt *mtest.T) {
		repo := NewBookingRepository(mt.DB)
		svc := primitive.NewObjectID().Hex()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.bookings", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "serviceId", Value: svc},
			{Key: "email", Value: "a@x.com"},
			{Key: "status", Value: "pending"},
			{Key: "meta", Value: bson.D{{Key: "phone", Value: "555"}}},
			{Key: "lab", Value: "north"},
		}))

		got, err := repo.ListByEmail(context.Background(), "a@x.com")
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, svc, got[0].ServiceID)
		assert.Equal(mt, "555", got[0].Meta["phone"])
		assert.Equal(mt, "north", got[0].Meta["lab"])
	})

	mt.Run("delete by service and email", func(mt *mtest.T) {
		repo := NewBookingRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		res, err := repo.DeleteByServiceAndEmail(context.Background(), primitive.NewObjectID().Hex(), "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), res.DeletedCount)
	})

	mt.Run("merge rejects operator keys", func(mt *mtest.T) {
		repo := NewBookingRepository(mt.DB)
		_, err := repo.Merge(context.Background(), primitive.NewObjectID().Hex(), map[string]any{"$unset": "email"})
		assert.ErrorIs(mt, err, domain.ErrInvalidInput)
	})

	mt.Run("merge rejects values that do not fit the stored type", func(mt *mtest.T) {
		repo := NewBookingRepository(mt.DB)
		for _, fields := range []map[string]any{
			{"price": "free"},
			{"createdAt": "yesterday"},
			{"meta": []any{1}},
			{"status": "lost"},
		} {
			_, err := repo.Merge(context.Background(), primitive.NewObjectID().Hex(), fields)
			assert.ErrorIs(mt, err, domain.ErrInvalidInput, "fields %v", fields)
		}
	})

	mt.Run("merge", func(mt *mtest.T) {
		repo := NewBookingRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		res, err := repo.Merge(context.Background(), primitive.NewObjectID().Hex(), map[string]any{"status": "delivered", "report": "ok"})
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.MatchedCount)
	})
}
