// Package mongostore stores posts as documents in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
)

// Driver is the configuration name of this backend.
const Driver = "mongo"

// DefaultCollection is the collection posts are stored in.
const DefaultCollection = "post"

// document is the BSON shape of a post: an ObjectID plus the shared body.
type document struct {
	ID            primitive.ObjectID `bson:"_id"`
	post.Document `bson:",inline"`
}

func (d document) toPost() *post.Post {
	return post.FromDocument(d.ID.Hex(), d.Document)
}

// Store is a store.Repository backed by a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *slog.Logger
	owned  bool
}

// Open connects to the MongoDB deployment at uri and verifies it with a ping.
func Open(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &store.ConnectionError{Op: "connect", Driver: Driver, Err: err}
	}

	s := New(client, database, collection, logger)
	s.owned = true

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps an existing client. The client is not disconnected by Close.
func New(client *mongo.Client, database, collection string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
		logger: logger.With("store", Driver),
	}
}

// FindAll returns every post in natural order.
func (s *Store) FindAll(ctx context.Context) ([]*post.Post, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, wrapErr("find all", err)
	}

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("find all", err)
	}

	posts := make([]*post.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toPost())
	}
	return posts, nil
}

// FindByID returns the post whose _id is the ObjectID with the given hex form.
func (s *Store) FindByID(ctx context.Context, id string) (*post.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	var d document
	err = s.coll.FindOne(ctx, bson.D{{Key: post.KeyID, Value: oid}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("find", err)
	}
	return d.toPost(), nil
}

// Save inserts new posts and replaces existing ones, keeping the stored
// create date.
func (s *Store) Save(ctx context.Context, p *post.Post) (*post.Post, error) {
	saved := p.Clone()

	if saved.IsNew() {
		saved.CreateDate = nil
		saved.Stamp(time.Now())
		d := document{ID: primitive.NewObjectID(), Document: saved.ToDocument()}
		if _, err := s.coll.InsertOne(ctx, d); err != nil {
			return nil, wrapErr("insert", err)
		}
		return d.toPost(), nil
	}

	oid, err := primitive.ObjectIDFromHex(saved.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post id %q: %w", saved.ID, err)
	}

	// createDate is only written on insert so an update can never move it.
	filter := bson.D{{Key: post.KeyID, Value: oid}}
	saved.Stamp(time.Now())
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: post.KeyTitle, Value: saved.Title},
			{Key: post.KeyContent, Value: saved.Content},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: post.KeyCreateDate, Value: saved.CreateDate.UTC()},
		}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var d document
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d); err != nil {
		return nil, wrapErr("update", err)
	}
	return d.toPost(), nil
}

// DeleteByID removes the post with the given id.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: post.KeyID, Value: oid}})
	if err != nil {
		return wrapErr("delete", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteAll removes every post from the collection.
func (s *Store) DeleteAll(ctx context.Context) error {
	res, err := s.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return wrapErr("delete all", err)
	}
	s.logger.Debug("deleted posts", "count", res.DeletedCount)
	return nil
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return &store.ConnectionError{Op: "ping", Driver: Driver, Err: err}
	}
	return nil
}

// Close disconnects the client if this Store created it.
func (s *Store) Close(ctx context.Context) error {
	if !s.owned {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// wrapErr marks network and timeout failures as ConnectionErrors.
func wrapErr(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &store.ConnectionError{Op: op, Driver: Driver, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
