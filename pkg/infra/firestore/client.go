// Package firestore backs the cache store with a Firestore collection
package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcheck/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client implements interfaces.CacheStore on a Firestore collection
type Client struct {
	client     *firestore.Client
	collection string
}

// document is the Firestore representation of one cache entry. The logical
// key is stored alongside the value because document IDs are hashed.
type document struct {
	Key       string    `firestore:"key"`
	Value     []byte    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// New creates a Firestore-backed cache store
func New(ctx context.Context, projectID, collection string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project_id", projectID))
	}

	return &Client{
		client:     client,
		collection: collection,
	}, nil
}

// Get returns the value stored for a key, or types.ErrCacheMiss
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	snapshot, err := c.client.Collection(c.collection).Doc(docID(key)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, types.ErrCacheMiss
		}
		return nil, goerr.Wrap(err, "failed to get cache document", goerr.V("key", key))
	}

	var doc document
	if err := snapshot.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode cache document", goerr.V("key", key))
	}
	return doc.Value, nil
}

// Put stores a value for a key, overwriting any previous document
func (c *Client) Put(ctx context.Context, key string, value []byte) error {
	doc := document{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	if _, err := c.client.Collection(c.collection).Doc(docID(key)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to write cache document", goerr.V("key", key))
	}
	return nil
}

// Close releases the underlying Firestore client
func (c *Client) Close() error {
	return c.client.Close()
}

// docID hashes the logical key: cache keys contain '/' which Firestore
// document IDs do not allow
func docID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
