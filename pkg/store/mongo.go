package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend stores one document per record in a collection.
type MongoBackend struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type layoutDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoBackend wraps an existing collection. The client is disconnected on
// Close when non-nil.
func NewMongoBackend(client *mongo.Client, coll *mongo.Collection) *MongoBackend {
	return &MongoBackend{client: client, coll: coll}
}

// DialMongo connects to uri and verifies the connection with a ping.
func DialMongo(ctx context.Context, uri, database, collection string) (*MongoBackend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoBackend(client, client.Database(database).Collection(collection)), nil
}

// Name returns "mongo".
func (b *MongoBackend) Name() string { return "mongo" }

// Get reads the record stored under key.
func (b *MongoBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc layoutDocument
	err := b.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classifyMongo(err)
	}
	return doc.Data, true, nil
}

// Set upserts the record stored under key.
func (b *MongoBackend) Set(ctx context.Context, key string, data []byte) error {
	doc := layoutDocument{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	_, err := b.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return classifyMongo(err)
}

// Delete removes the record stored under key.
func (b *MongoBackend) Delete(ctx context.Context, key string) error {
	_, err := b.coll.DeleteOne(ctx, bson.M{"_id": key})
	return classifyMongo(err)
}

// Close disconnects the client.
func (b *MongoBackend) Close() error {
	if b.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}

// classifyMongo marks network failures and server timeouts as retryable.
func classifyMongo(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(err)
	}
	return err
}

// Ensure MongoBackend implements Backend.
var _ Backend = (*MongoBackend)(nil)
