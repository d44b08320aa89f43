package mongostore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
)

func newMockStore(mt *mtest.T) *Store {
	mt.Helper()
	return New(mt.Client, "graphql", DefaultCollection, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postDoc(id primitive.ObjectID, title, content string, created time.Time) bson.D {
	return bson.D{
		{Key: post.KeyID, Value: id},
		{Key: post.KeyTitle, Value: title},
		{Key: post.KeyContent, Value: content},
		{Key: post.KeyCreateDate, Value: created},
	}
}

const ns = "graphql.post"

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	mt.Run("find all", func(mt *mtest.T) {
		s := newMockStore(mt)
		id1, id2 := primitive.NewObjectID(), primitive.NewObjectID()

		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, postDoc(id1, "Post one", "Content of Post one", created))
		next := mtest.CreateCursorResponse(0, ns, mtest.NextBatch, postDoc(id2, "Post two", "Content of Post two", created))
		mt.AddMockResponses(first, next)

		all, err := s.FindAll(context.Background())
		if err != nil {
			mt.Fatalf("FindAll() error = %v", err)
		}
		if len(all) != 2 {
			mt.Fatalf("FindAll() returned %d posts, want 2", len(all))
		}
		if all[0].ID != id1.Hex() || all[0].Title != "Post one" {
			mt.Errorf("all[0] = %+v", all[0])
		}
		if all[1].ID != id2.Hex() || all[1].Content != "Content of Post two" {
			mt.Errorf("all[1] = %+v", all[1])
		}
		if !all[0].CreateDate.Equal(created) {
			mt.Errorf("CreateDate = %v, want %v", all[0].CreateDate, created)
		}
	})

	mt.Run("find all empty", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		all, err := s.FindAll(context.Background())
		if err != nil {
			mt.Fatalf("FindAll() error = %v", err)
		}
		if all == nil || len(all) != 0 {
			mt.Errorf("FindAll() = %v, want empty non-nil slice", all)
		}
	})

	mt.Run("find by id", func(mt *mtest.T) {
		s := newMockStore(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, postDoc(id, "T", "C", created)))

		got, err := s.FindByID(context.Background(), id.Hex())
		if err != nil {
			mt.Fatalf("FindByID() error = %v", err)
		}
		if got.ID != id.Hex() || got.Title != "T" || got.Content != "C" {
			mt.Errorf("FindByID() = %+v", got)
		}
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.FindByID(context.Background(), primitive.NewObjectID().Hex())
		if !errors.Is(err, store.ErrNotFound) {
			mt.Errorf("FindByID() error = %v, want ErrNotFound", err)
		}
	})

	mt.Run("find by malformed id", func(mt *mtest.T) {
		s := newMockStore(mt)

		_, err := s.FindByID(context.Background(), "missing-id")
		if !errors.Is(err, store.ErrNotFound) {
			mt.Errorf("FindByID() error = %v, want ErrNotFound", err)
		}
	})

	mt.Run("save new", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		before := time.Now().Add(-time.Second)
		saved, err := s.Save(context.Background(), post.New("Post one", "Content of Post one"))
		if err != nil {
			mt.Fatalf("Save() error = %v", err)
		}
		if _, err := primitive.ObjectIDFromHex(saved.ID); err != nil {
			mt.Errorf("ID %q is not an ObjectID: %v", saved.ID, err)
		}
		if saved.CreateDate == nil || saved.CreateDate.Before(before) {
			mt.Errorf("CreateDate = %v, want around now", saved.CreateDate)
		}
	})

	mt.Run("save existing", func(mt *mtest.T) {
		s := newMockStore(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: postDoc(id, "New", "New body", created)},
		))

		p := post.New("New", "New body")
		p.ID = id.Hex()
		saved, err := s.Save(context.Background(), p)
		if err != nil {
			mt.Fatalf("Save() error = %v", err)
		}
		if saved.ID != id.Hex() || saved.Title != "New" {
			mt.Errorf("Save() = %+v", saved)
		}
		if !saved.CreateDate.Equal(created) {
			mt.Errorf("CreateDate = %v, want stored %v", saved.CreateDate, created)
		}
	})

	mt.Run("save with malformed id", func(mt *mtest.T) {
		s := newMockStore(mt)
		p := post.New("T", "C")
		p.ID = "not-an-object-id"

		if _, err := s.Save(context.Background(), p); err == nil {
			mt.Error("Save() should reject an id that is not an ObjectID")
		}
	})

	mt.Run("delete by id", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		if err := s.DeleteByID(context.Background(), primitive.NewObjectID().Hex()); err != nil {
			mt.Errorf("DeleteByID() error = %v", err)
		}
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := s.DeleteByID(context.Background(), primitive.NewObjectID().Hex())
		if !errors.Is(err, store.ErrNotFound) {
			mt.Errorf("DeleteByID() error = %v, want ErrNotFound", err)
		}
	})

	mt.Run("delete all", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		if err := s.DeleteAll(context.Background()); err != nil {
			mt.Errorf("DeleteAll() error = %v", err)
		}
	})

	mt.Run("network error is unavailable", func(mt *mtest.T) {
		s := newMockStore(mt)
		unreachable := mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    6,
			Name:    "HostUnreachable",
			Message: "connection refused",
			Labels:  []string{"NetworkError"},
		})
		// Reads are retried once.
		mt.AddMockResponses(unreachable, unreachable)

		_, err := s.FindAll(context.Background())
		if !errors.Is(err, store.ErrUnavailable) {
			mt.Errorf("FindAll() error = %v, want ErrUnavailable", err)
		}
	})

	mt.Run("command error is not unavailable", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		err := s.DeleteAll(context.Background())
		if err == nil {
			mt.Fatal("DeleteAll() should fail")
		}
		if errors.Is(err, store.ErrUnavailable) {
			mt.Errorf("DeleteAll() error = %v, should not be ErrUnavailable", err)
		}
	})

	mt.Run("close leaves borrowed client connected", func(mt *mtest.T) {
		s := newMockStore(mt)
		if err := s.Close(context.Background()); err != nil {
			mt.Errorf("Close() error = %v", err)
		}
	})
}
