package kv

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const defaultFirestoreDialTimeout = 10 * time.Second

type firestoreEntry struct {
	Key       string    `firestore:"key"`
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// Firestore stores one document per key inside a collection.
type Firestore struct {
	client     *firestore.Client
	collection string
	ownsClient bool
}

// FirestoreOptions configures NewFirestore.
type FirestoreOptions struct {
	ProjectID    string
	Collection   string
	EmulatorHost string
	ClientOpts   []option.ClientOption
}

// NewFirestore dials Firestore for the given project.
func NewFirestore(ctx context.Context, opts FirestoreOptions) (*Firestore, error) {
	projectID := strings.TrimSpace(opts.ProjectID)
	if projectID == "" {
		return nil, errors.New("kv: firestore project id is required")
	}
	clientOpts := append([]option.ClientOption(nil), opts.ClientOpts...)
	if host := strings.TrimSpace(opts.EmulatorHost); host != "" {
		clientOpts = append(clientOpts,
			option.WithoutAuthentication(),
			option.WithEndpoint(host),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	dialCtx, cancel := context.WithTimeout(ctx, defaultFirestoreDialTimeout)
	defer cancel()
	client, err := firestore.NewClient(dialCtx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("kv: firestore create client: %w", err)
	}
	store := NewFirestoreWithClient(client, opts.Collection)
	store.ownsClient = true
	return store, nil
}

// NewFirestoreWithClient wraps an existing client. The caller keeps ownership of it.
func NewFirestoreWithClient(client *firestore.Client, collection string) *Firestore {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = "kv"
	}
	return &Firestore{client: client, collection: collection}
}

// Get implements Store.
func (f *Firestore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	snap, err := f.doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, f.wrap("get", err)
	}
	var entry firestoreEntry
	if err := snap.DataTo(&entry); err != nil {
		return "", false, f.wrap("decode", err)
	}
	return entry.Value, true, nil
}

// Set implements Store.
func (f *Firestore) Set(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	entry := firestoreEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if _, err := f.doc(key).Set(ctx, entry); err != nil {
		return f.wrap("set", err)
	}
	return nil
}

// Remove implements Store. Deleting a missing document succeeds.
func (f *Firestore) Remove(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if _, err := f.doc(key).Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
		return f.wrap("remove", err)
	}
	return nil
}

// Close releases the client when this store created it.
func (f *Firestore) Close() error {
	if !f.ownsClient || f.client == nil {
		return nil
	}
	return f.client.Close()
}

// Document IDs may not contain '/', so keys are hex encoded.
func (f *Firestore) doc(key string) *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(hex.EncodeToString([]byte(key)))
}

func (f *Firestore) wrap(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch status.Code(err) {
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	}
	return fmt.Errorf("kv: firestore %s.%s: %w", f.collection, op, err)
}
