package session

import "context"

// SnapshotStore is the scoped key/value store holding raw snapshots.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// ArtifactStore keeps exported audit documents and returns their location.
type ArtifactStore interface {
	PutJSON(ctx context.Context, key string, data []byte) (string, error)
}
