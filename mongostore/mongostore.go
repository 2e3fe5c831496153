// Package mongostore is an assetcache.Backend over MongoDB. Get/Set/Delete
// use the ctx-first, error-returning shape assetcache.Backend requires, and
// Keys is added for index rebuild.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config holds the configuration for creating a MongoDB-backed Backend.
type Config struct {
	// URI is the MongoDB connection URI. Required.
	URI string
	// Database is the database to use for caching. Required.
	Database string
	// Collection is the collection to use for caching. Optional, defaults
	// to "assetcache".
	Collection string
	// KeyPrefix is prepended to every cache key. Optional, defaults to
	// "cache:".
	KeyPrefix string
	// Timeout bounds every database operation. Optional, defaults to 5s.
	Timeout time.Duration
	// TTL, if set, creates a TTL index on createdAt so Mongo itself expires
	// entries independently of Store.Prune.
	TTL time.Duration
	// ClientOptions carries additional mongo.Connect options.
	ClientOptions *options.ClientOptions
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Collection: "assetcache",
		KeyPrefix:  "cache:",
		Timeout:    5 * time.Second,
	}
}

type storedEntry struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	CreatedAt time.Time `bson:"createdAt"`
}

// Backend is an assetcache.Backend storing entries as documents in a
// MongoDB collection.
type Backend struct {
	client     *mongo.Client
	collection *mongo.Collection
	keyPrefix  string
	timeout    time.Duration
}

func (b *Backend) cacheKey(key string) string { return b.keyPrefix + key }

func (b *Backend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	var entry storedEntry
	err := b.collection.FindOne(ctx, bson.M{"_id": b.cacheKey(key)}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("mongostore: get %q: %w", key, err)
	}
	return entry.Data, true, nil
}

func (b *Backend) Set(ctx context.Context, key string, raw []byte) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	entry := storedEntry{Key: b.cacheKey(key), Data: raw, CreatedAt: time.Now()}
	opts := options.Replace().SetUpsert(true)
	if _, err := b.collection.ReplaceOne(ctx, bson.M{"_id": entry.Key}, entry, opts); err != nil {
		return fmt.Errorf("mongostore: set %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	if _, err := b.collection.DeleteOne(ctx, bson.M{"_id": b.cacheKey(key)}); err != nil {
		return fmt.Errorf("mongostore: delete %q: %w", key, err)
	}
	return nil
}

// Keys returns every stored key with the configured prefix stripped off.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	cur, err := b.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("mongostore: keys: %w", err)
	}
	defer cur.Close(ctx)

	var keys []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongostore: decode key: %w", err)
		}
		keys = append(keys, doc.ID[len(b.keyPrefix):])
	}
	return keys, cur.Err()
}

// Close disconnects the MongoDB client.
func (b *Backend) Close(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	return b.client.Disconnect(ctx)
}

// New connects to MongoDB per config and returns a Backend. If config.TTL
// is set, a TTL index on createdAt is created so entries expire in Mongo
// itself as a backstop to Store.Prune.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.URI == "" {
		return nil, fmt.Errorf("mongostore: URI is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("mongostore: database name is required")
	}
	def := DefaultConfig()
	if config.Collection == "" {
		config.Collection = def.Collection
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = def.KeyPrefix
	}
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}

	clientOpts := options.Client().ApplyURI(config.URI)
	if config.ClientOptions != nil {
		clientOpts = config.ClientOptions.ApplyURI(config.URI)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, config.Timeout)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	b := &Backend{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
		keyPrefix:  config.KeyPrefix,
		timeout:    config.Timeout,
	}

	if config.TTL > 0 {
		if err := b.createTTLIndex(ctx, config.TTL); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongostore: create TTL index: %w", err)
		}
	}
	return b, nil
}

// NewWithClient wraps an already-connected MongoDB client. The returned
// Backend never disconnects it.
func NewWithClient(client *mongo.Client, database, collection string, config Config) (*Backend, error) {
	if client == nil {
		return nil, fmt.Errorf("mongostore: client is required")
	}
	if database == "" {
		return nil, fmt.Errorf("mongostore: database name is required")
	}
	def := DefaultConfig()
	if collection == "" {
		collection = def.Collection
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = def.KeyPrefix
	}
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}
	return &Backend{
		collection: client.Database(database).Collection(collection),
		keyPrefix:  config.KeyPrefix,
		timeout:    config.Timeout,
	}, nil
}

func (b *Backend) createTTLIndex(ctx context.Context, ttl time.Duration) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().
			SetExpireAfterSeconds(int32(ttl.Seconds())).
			SetName("assetcache_ttl"),
	}
	indexCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	_, err := b.collection.Indexes().CreateOne(indexCtx, indexModel)
	return err
}
