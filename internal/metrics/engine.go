package metrics

import (
	"fmt"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
)

// Recompute runs the engine that matches the dashboard's role.
func Recompute(d *domain.Dashboard, now time.Time) error {
	switch d.Role {
	case domain.RolePlanner:
		RecomputePlanner(d, now)
	case domain.RoleVendor:
		RecomputeVendor(d)
	default:
		return fmt.Errorf("recompute dashboard %s: unknown role %q", d.OwnerID, d.Role)
	}
	return nil
}
