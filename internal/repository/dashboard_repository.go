// backend-go/internal/repository/dashboard_repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
)

// DashboardRepository persists whole dashboard documents keyed by role and owner.
type DashboardRepository interface {
	// Get returns domain.ErrNotFound when no dashboard exists for the owner.
	Get(ctx context.Context, role domain.Role, ownerID string) (*domain.Dashboard, error)
	// GetOrCreate provisions a zero-valued dashboard when none exists and
	// reports whether it did.
	GetOrCreate(ctx context.Context, role domain.Role, ownerID string, now time.Time) (*domain.Dashboard, bool, error)
	Save(ctx context.Context, d *domain.Dashboard) error
	ListOwners(ctx context.Context, role domain.Role) ([]string, error)
	TopRated(ctx context.Context, role domain.Role, limit int) ([]domain.DashboardSummary, error)
}
