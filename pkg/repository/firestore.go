package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const memoryCollection = "user_memories"

// Firestore implements Repository using one Firestore document per user.
type Firestore struct {
	client *firestore.Client
}

// New creates a new Firestore repository
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) GetMemory(ctx context.Context, userID string) (*model.UserMemory, error) {
	doc, err := r.client.Collection(memoryCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrMemoryNotFound, "", goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to get memory document", goerr.V("user_id", userID))
	}

	var memory model.UserMemory
	if err := doc.DataTo(&memory); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal memory document", goerr.V("user_id", userID))
	}

	// Documents written before the language preference field existed
	// unmarshal with a nil pointer, which is the intended zero state.
	memory.UserID = userID

	return &memory, nil
}

func (r *Firestore) PutMemory(ctx context.Context, memory *model.UserMemory) error {
	if memory.UserID == "" {
		return goerr.New("user ID is required")
	}

	memory.UpdatedAt = time.Now()

	if _, err := r.client.Collection(memoryCollection).Doc(memory.UserID).Set(ctx, memory); err != nil {
		return goerr.Wrap(err, "failed to put memory document", goerr.V("user_id", memory.UserID))
	}

	return nil
}

func (r *Firestore) ListUserIDs(ctx context.Context) ([]string, error) {
	iter := r.client.Collection(memoryCollection).Select().Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory documents")
		}
		ids = append(ids, doc.Ref.ID)
	}

	return ids, nil
}
