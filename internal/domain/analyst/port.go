package analyst

import "context"

// Repository port for persisting and querying analyses
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Paginate(ctx context.Context, sessionID string, page, pageSize int) ([]*Analysis, error)
	Latest(ctx context.Context, sessionID string) (*Analysis, error)
}
