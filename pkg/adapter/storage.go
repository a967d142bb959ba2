package adapter

import (
	"context"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// SnapshotStorage stores serialized memory snapshots, one object per
// user, for export/import.
type SnapshotStorage interface {
	// Put returns a writer for the snapshot of a user
	Put(ctx context.Context, userID string) (io.WriteCloser, error)
	// Get returns a reader for the snapshot of a user
	Get(ctx context.Context, userID string) (io.ReadCloser, error)
}

type snapshotStorage struct {
	bucketName string
	client     *storage.Client
}

// NewSnapshotStorage creates a Cloud Storage backed snapshot store
func NewSnapshotStorage(ctx context.Context, bucketName string) (SnapshotStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &snapshotStorage{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func snapshotKey(userID string) string {
	return path.Join("snapshots", userID+".json")
}

func (s *snapshotStorage) Put(ctx context.Context, userID string) (io.WriteCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(snapshotKey(userID))
	return obj.NewWriter(ctx), nil
}

func (s *snapshotStorage) Get(ctx context.Context, userID string) (io.ReadCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(snapshotKey(userID))
	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read snapshot",
			goerr.V("bucket", s.bucketName), goerr.V("user_id", userID))
	}
	return reader, nil
}
