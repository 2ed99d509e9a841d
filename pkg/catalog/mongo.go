package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultDatabase   = "odex"
	defaultCollection = "services"
	connectTimeout    = 5 * time.Second
)

// MongoStore persists catalog entries in MongoDB for server deployments.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	// URI is the connection string, e.g. "mongodb://localhost:27017".
	URI string
	// Database defaults to "odex".
	Database string
	// Collection defaults to "services".
	Collection string
}

// NewMongoStore connects to MongoDB and ensures the service URL index.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = defaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = defaultCollection
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "service_url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Upsert(ctx context.Context, e Entry) (Entry, error) {
	existing, err := s.Get(ctx, e.ServiceURL)
	switch {
	case err == nil:
		e.ID = existing.ID
		e.FirstSeen = existing.FirstSeen
		if e.Name == "" {
			e.Name = existing.Name
		}
	case !errors.Is(err, ErrNotFound):
		return Entry{}, err
	}

	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"service_url": e.ServiceURL},
		e,
		options.Replace().SetUpsert(true))
	if err != nil {
		return Entry{}, fmt.Errorf("upsert entry: %w", err)
	}
	return e, nil
}

func (s *MongoStore) Get(ctx context.Context, serviceURL string) (Entry, error) {
	var e Entry
	err := s.coll.FindOne(ctx, bson.M{"service_url": serviceURL}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("find entry: %w", err)
	}
	return e, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Entry, error) {
	cursor, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "last_seen", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return entries, nil
}

func (s *MongoStore) Delete(ctx context.Context, serviceURL string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"service_url": serviceURL})
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
