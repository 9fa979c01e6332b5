package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
	"github.com/andresuchdata/eventdesk/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

// queryer is satisfied by both *DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

type dashboardRepository struct {
	db *DB
}

func NewDashboardRepository(db *DB) repository.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) Get(ctx context.Context, role domain.Role, ownerID string) (*domain.Dashboard, error) {
	return r.get(ctx, r.db, role, ownerID)
}

func (r *dashboardRepository) GetOrCreate(ctx context.Context, role domain.Role, ownerID string, now time.Time) (*domain.Dashboard, bool, error) {
	var (
		dashboard *domain.Dashboard
		created   bool
	)

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		fresh := domain.NewDashboard(role, ownerID, now)
		payload, err := json.Marshal(fresh)
		if err != nil {
			return fmt.Errorf("encode dashboard: %w", err)
		}

		query := tx.Rebind(`
			INSERT INTO dashboards (owner_role, owner_id, document)
			VALUES (?, ?, ?)
			ON CONFLICT (owner_role, owner_id) DO NOTHING
		`)
		res, err := tx.ExecContext(ctx, query, string(role), ownerID, string(payload))
		if err != nil {
			return fmt.Errorf("failed to provision dashboard: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			created = true
			dashboard = fresh
			return nil
		}

		dashboard, err = r.get(ctx, tx, role, ownerID)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	return dashboard, created, nil
}

func (r *dashboardRepository) Save(ctx context.Context, d *domain.Dashboard) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO dashboards (
			owner_role, owner_id, document, total_revenue, pending_revenue,
			average_rating, rating_count, work_item_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_role, owner_id)
		DO UPDATE SET
			document = excluded.document,
			total_revenue = excluded.total_revenue,
			pending_revenue = excluded.pending_revenue,
			average_rating = excluded.average_rating,
			rating_count = excluded.rating_count,
			work_item_count = excluded.work_item_count,
			updated_at = CURRENT_TIMESTAMP
	`)

	s := d.Summary()
	_, err = r.db.ExecContext(ctx, query,
		string(d.Role),
		d.OwnerID,
		string(payload),
		s.TotalRevenue,
		s.PendingRevenue,
		s.AverageRating,
		s.RatingCount,
		s.WorkItemCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save dashboard %s: %w", d.Key(), err)
	}
	return nil
}

func (r *dashboardRepository) ListOwners(ctx context.Context, role domain.Role) ([]string, error) {
	query := r.db.Rebind(`
		SELECT owner_id
		FROM dashboards
		WHERE owner_role = ?
		ORDER BY owner_id
	`)

	var owners []string
	if err := r.db.SelectContext(ctx, &owners, query, string(role)); err != nil {
		return nil, fmt.Errorf("failed to list %s dashboards: %w", role, err)
	}
	return owners, nil
}

func (r *dashboardRepository) TopRated(ctx context.Context, role domain.Role, limit int) ([]domain.DashboardSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	query := r.db.Rebind(`
		SELECT
			owner_role,
			owner_id,
			total_revenue,
			pending_revenue,
			average_rating,
			rating_count,
			work_item_count
		FROM dashboards
		WHERE owner_role = ? AND rating_count > 0
		ORDER BY average_rating DESC, rating_count DESC, owner_id ASC
		LIMIT ?
	`)

	summaries := make([]domain.DashboardSummary, 0)
	if err := r.db.SelectContext(ctx, &summaries, query, string(role), limit); err != nil {
		return nil, fmt.Errorf("failed to get top rated %s dashboards: %w", role, err)
	}
	return summaries, nil
}

func (r *dashboardRepository) get(ctx context.Context, q queryer, role domain.Role, ownerID string) (*domain.Dashboard, error) {
	query := q.Rebind(`
		SELECT document
		FROM dashboards
		WHERE owner_role = ? AND owner_id = ?
	`)

	var payload []byte
	err := sqlx.GetContext(ctx, q, &payload, query, string(role), ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dashboard %s: %w", domain.DashboardKey(role, ownerID), domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard %s: %w", domain.DashboardKey(role, ownerID), err)
	}

	return decodeDashboard(payload, role, ownerID)
}

func decodeDashboard(payload []byte, role domain.Role, ownerID string) (*domain.Dashboard, error) {
	var d domain.Dashboard
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("decode dashboard %s: %w", domain.DashboardKey(role, ownerID), err)
	}
	// The row key is authoritative over whatever the document carries.
	d.Role = role
	d.OwnerID = ownerID
	if d.StatusCounts == nil {
		d.StatusCounts = make(map[string]int)
	}
	return &d, nil
}
