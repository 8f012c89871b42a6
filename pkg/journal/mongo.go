package journal

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default MongoDB names used when none are configured.
const (
	DefaultMongoDatabase   = "navgraph"
	DefaultMongoCollection = "journal"
)

// Mongo stores entries as documents in a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to uri and verifies the connection.
func NewMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Append inserts e.
func (m *Mongo) Append(ctx context.Context, e Entry) error {
	return RetryWithBackoff(ctx, func() error {
		_, err := m.coll.InsertOne(ctx, e)
		return mongoRetryable(err)
	})
}

// Entries queries the collection, sorted by sequence number within a session
// and by insertion otherwise.
func (m *Mongo) Entries(ctx context.Context, session string) ([]Entry, error) {
	filter := bson.M{}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if session != "" {
		filter["session"] = session
		opts.SetSort(bson.D{{Key: "seq", Value: 1}})
	}

	var out []Entry
	err := RetryWithBackoff(ctx, func() error {
		cursor, err := m.coll.Find(ctx, filter, opts)
		if err != nil {
			return mongoRetryable(err)
		}
		out = nil
		return mongoRetryable(cursor.All(ctx, &out))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}

func mongoRetryable(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(err)
	}
	return err
}

var _ Journal = (*Mongo)(nil)
