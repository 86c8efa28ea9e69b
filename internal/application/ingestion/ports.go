package ingestion

import (
	"context"
	"time"

	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/lead"
)

// LeadWriter parte del Lead Store que usa la ingesta.
type LeadWriter interface {
	Exists(ctx context.Context, companyName, phone string) (bool, error)
	Insert(ctx context.Context, lead *entity.Lead) (bool, error)
}

// FileReader lector de hojas de cálculo.
type FileReader interface {
	Supports(name string) bool
	ReadFile(path string) ([]lead.Row, error)
}

// Locker lock no bloqueante entre pasadas concurrentes (worker, reposición, admin, réplicas).
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// RemoteSource origen remoto opcional que se vuelca al directorio local antes de escanear.
type RemoteSource interface {
	Name() string
	Sync(ctx context.Context, dir string) (int, error)
}
