package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/cache"
	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
	"github.com/andresuchdata/eventdesk/backend-go/internal/metrics"
	"github.com/andresuchdata/eventdesk/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultNotificationType = "info"

// NewWorkItem describes an event or order being added to a dashboard.
type NewWorkItem struct {
	ClientID    string
	Title       string
	ScheduledAt *time.Time
	VendorIDs   []string
}

// PaymentInput is a payment submitted against a work item.
type PaymentInput struct {
	Amount *float64
	Status string
	Method string
}

// DashboardService runs every dashboard mutation as load, mutate, recompute,
// save. Recomputation happens inside mutate and cannot be skipped.
type DashboardService struct {
	repo  repository.DashboardRepository
	cache cache.DashboardCache
	now   func() time.Time
	newID func() string
}

func NewDashboardService(repo repository.DashboardRepository, cacheImpl cache.DashboardCache) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &DashboardService{
		repo:  repo,
		cache: cacheImpl,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// GetDashboard returns the owner's dashboard, provisioning an empty one on
// first access, with metrics recomputed against the current time.
func (s *DashboardService) GetDashboard(ctx context.Context, role domain.Role, ownerID string) (*domain.Dashboard, error) {
	if err := validateOwner(role, ownerID); err != nil {
		return nil, err
	}
	now := s.now()

	if d, ok, err := s.cache.Get(ctx, role, ownerID); err == nil && ok {
		before := d.Metrics.Clone()
		if err := metrics.Recompute(d, now); err != nil {
			return nil, err
		}
		if before.Equal(d.Metrics) {
			return d, nil
		}
		// Derived fields moved (usually a deadline fell due); persist from
		// the stored copy rather than the cached one.
	} else if err != nil {
		log.Warn().Err(err).Str("dashboard", domain.DashboardKey(role, ownerID)).Msg("dashboard: cache get failed")
	}

	d, created, err := s.repo.GetOrCreate(ctx, role, ownerID, now)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info().Str("dashboard", d.Key()).Msg("dashboard: provisioned")
	}

	before := d.Metrics.Clone()
	if err := metrics.Recompute(d, now); err != nil {
		return nil, err
	}
	if !before.Equal(d.Metrics) {
		d.UpdatedAt = now
		if err := s.repo.Save(ctx, d); err != nil {
			return nil, err
		}
	}

	s.refreshCache(ctx, d)
	return d, nil
}

// AddWorkItem creates a pending event or order. The dashboard is provisioned
// if the owner has none yet.
func (s *DashboardService) AddWorkItem(ctx context.Context, role domain.Role, ownerID string, in NewWorkItem) (*domain.WorkItem, error) {
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return nil, domain.NewValidationError("client_id", "client is required")
	}
	if role != domain.RolePlanner && len(in.VendorIDs) > 0 {
		return nil, domain.NewValidationError("vendor_ids", "only planner events reference vendors")
	}

	var added domain.WorkItem
	_, err := s.mutate(ctx, role, ownerID, true, func(d *domain.Dashboard, now time.Time) error {
		item, err := d.AddItem(domain.WorkItem{
			ID:          s.newID(),
			ClientID:    clientID,
			Title:       strings.TrimSpace(in.Title),
			Status:      domain.StatusPending,
			ScheduledAt: in.ScheduledAt,
			Payments:    []domain.Payment{},
			VendorIDs:   in.VendorIDs,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		added = *item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// SetStatus overwrites a work item's status.
func (s *DashboardService) SetStatus(ctx context.Context, role domain.Role, ownerID, itemID, status string) (*domain.Dashboard, error) {
	normalized, ok := domain.ParseWorkItemStatus(role, status)
	if !ok {
		return nil, domain.NewValidationError("status", fmt.Sprintf("invalid %s status %q", role, status))
	}

	return s.mutate(ctx, role, ownerID, false, func(d *domain.Dashboard, now time.Time) error {
		item, err := findItem(d, itemID)
		if err != nil {
			return err
		}
		item.Status = normalized
		item.UpdatedAt = now
		return nil
	})
}

// AppendPayment adds a payment with a server-assigned id and timestamp.
func (s *DashboardService) AppendPayment(ctx context.Context, role domain.Role, ownerID, itemID string, in PaymentInput) (*domain.Dashboard, error) {
	if in.Amount == nil {
		return nil, domain.NewValidationError("amount", "amount is required")
	}
	if *in.Amount < 0 {
		return nil, domain.NewValidationError("amount", "amount must not be negative")
	}
	if strings.TrimSpace(in.Status) == "" {
		return nil, domain.NewValidationError("status", "payment status is required")
	}
	status, ok := domain.ParsePaymentStatus(role, in.Status)
	if !ok {
		return nil, domain.NewValidationError("status", fmt.Sprintf("invalid payment status %q", in.Status))
	}

	return s.mutate(ctx, role, ownerID, false, func(d *domain.Dashboard, now time.Time) error {
		item, err := findItem(d, itemID)
		if err != nil {
			return err
		}
		item.Payments = append(item.Payments, domain.Payment{
			ID:        s.newID(),
			Amount:    *in.Amount,
			Status:    status,
			Method:    strings.TrimSpace(in.Method),
			CreatedAt: now,
		})
		item.UpdatedAt = now
		return nil
	})
}

// AppendOrUpdateRating records the reviewer's rating of the owner, replacing
// any earlier rating by the same reviewer.
func (s *DashboardService) AppendOrUpdateRating(ctx context.Context, role domain.Role, ownerID string, in domain.RatingInput) (*domain.Dashboard, error) {
	if err := metrics.ValidateRating(in); err != nil {
		return nil, err
	}
	if in.ReviewerID == ownerID {
		return nil, domain.NewValidationError("reviewer_id", "owners cannot rate themselves")
	}

	return s.mutate(ctx, role, ownerID, false, func(d *domain.Dashboard, now time.Time) error {
		ratings, mean, err := metrics.UpsertRating(d.Ratings, in, now)
		if err != nil {
			return err
		}
		d.Ratings = ratings
		d.AverageRating = mean
		return nil
	})
}

// AppendNotification adds a notification to the owner's dashboard.
func (s *DashboardService) AppendNotification(ctx context.Context, role domain.Role, ownerID, message, notificationType string) (*domain.Dashboard, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.NewValidationError("message", "message is required")
	}
	notificationType = strings.TrimSpace(notificationType)
	if notificationType == "" {
		notificationType = defaultNotificationType
	}

	return s.mutate(ctx, role, ownerID, false, func(d *domain.Dashboard, now time.Time) error {
		d.Notifications = append(d.Notifications, domain.Notification{
			ID:        s.newID(),
			Message:   message,
			Type:      notificationType,
			CreatedAt: now,
		})
		return nil
	})
}

// MarkNotificationRead flags a notification as read.
func (s *DashboardService) MarkNotificationRead(ctx context.Context, role domain.Role, ownerID, notificationID string) (*domain.Dashboard, error) {
	return s.mutate(ctx, role, ownerID, false, func(d *domain.Dashboard, now time.Time) error {
		n, ok := d.Notification(notificationID)
		if !ok {
			return fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
		}
		n.Read = true
		return nil
	})
}

// AddTask attaches a pending task to a planner event.
func (s *DashboardService) AddTask(ctx context.Context, ownerID, eventID, title string, dueDate time.Time) (*domain.Dashboard, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.NewValidationError("title", "title is required")
	}
	if dueDate.IsZero() {
		return nil, domain.NewValidationError("due_date", "due date is required")
	}

	return s.mutate(ctx, domain.RolePlanner, ownerID, false, func(d *domain.Dashboard, now time.Time) error {
		event, err := findItem(d, eventID)
		if err != nil {
			return err
		}
		event.Tasks = append(event.Tasks, domain.Task{
			ID:      s.newID(),
			Title:   title,
			DueDate: dueDate.UTC(),
			Status:  domain.TaskPending,
		})
		event.UpdatedAt = now
		return nil
	})
}

// SetTaskStatus marks a planner task pending or done.
func (s *DashboardService) SetTaskStatus(ctx context.Context, ownerID, eventID, taskID, status string) (*domain.Dashboard, error) {
	normalized, ok := domain.ParseTaskStatus(status)
	if !ok {
		return nil, domain.NewValidationError("status", fmt.Sprintf("invalid task status %q", status))
	}

	return s.mutate(ctx, domain.RolePlanner, ownerID, false, func(d *domain.Dashboard, now time.Time) error {
		event, err := findItem(d, eventID)
		if err != nil {
			return err
		}
		task, ok := event.Task(taskID)
		if !ok {
			return fmt.Errorf("task %s: %w", taskID, domain.ErrNotFound)
		}
		task.Status = normalized
		event.UpdatedAt = now
		return nil
	})
}

// TopRated lists the best rated dashboards of a role.
func (s *DashboardService) TopRated(ctx context.Context, role domain.Role, limit int) ([]domain.DashboardSummary, error) {
	return s.repo.TopRated(ctx, role, limit)
}

// RecomputeAll reloads, recomputes and saves every dashboard of a role.
// Dashboards are independent, so up to concurrency of them run at once.
func (s *DashboardService) RecomputeAll(ctx context.Context, role domain.Role, concurrency int) (int, error) {
	owners, err := s.repo.ListOwners(ctx, role)
	if err != nil {
		return 0, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, owner := range owners {
		g.Go(func() error {
			_, err := s.mutate(gctx, role, owner, false, func(*domain.Dashboard, time.Time) error { return nil })
			if err != nil {
				return fmt.Errorf("recompute %s: %w", domain.DashboardKey(role, owner), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	log.Info().Str("role", string(role)).Int("dashboards", len(owners)).Msg("dashboard: recompute finished")
	return len(owners), nil
}

// mutate loads the dashboard, applies fn, recomputes the role's metrics and
// persists the whole aggregate, then drops the cached copy. When fn fails
// nothing is saved.
func (s *DashboardService) mutate(ctx context.Context, role domain.Role, ownerID string, provision bool, fn func(d *domain.Dashboard, now time.Time) error) (*domain.Dashboard, error) {
	if err := validateOwner(role, ownerID); err != nil {
		return nil, err
	}
	now := s.now()

	var (
		d   *domain.Dashboard
		err error
	)
	if provision {
		d, _, err = s.repo.GetOrCreate(ctx, role, ownerID, now)
	} else {
		d, err = s.repo.Get(ctx, role, ownerID)
	}
	if err != nil {
		return nil, err
	}

	if err := fn(d, now); err != nil {
		return nil, err
	}
	if err := metrics.Recompute(d, now); err != nil {
		return nil, err
	}
	d.UpdatedAt = now

	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}

	// Concurrent writers may finish in either order, so the next read
	// repopulates from the database instead.
	s.invalidateCache(ctx, d)
	return d, nil
}

func (s *DashboardService) invalidateCache(ctx context.Context, d *domain.Dashboard) {
	if err := s.cache.Invalidate(ctx, d.Role, d.OwnerID); err != nil {
		log.Warn().Err(err).Str("dashboard", d.Key()).Msg("dashboard: cache invalidate failed")
	}
}

func (s *DashboardService) refreshCache(ctx context.Context, d *domain.Dashboard) {
	if err := s.cache.Set(ctx, d); err != nil {
		log.Warn().Err(err).Str("dashboard", d.Key()).Msg("dashboard: cache set failed")
		// A stale copy must not outlive a failed refresh.
		s.invalidateCache(ctx, d)
	}
}

func findItem(d *domain.Dashboard, itemID string) (*domain.WorkItem, error) {
	item, ok := d.Item(itemID)
	if !ok {
		return nil, fmt.Errorf("work item %s: %w", itemID, domain.ErrNotFound)
	}
	return item, nil
}

func validateOwner(role domain.Role, ownerID string) error {
	if role != domain.RolePlanner && role != domain.RoleVendor {
		return domain.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}
	if strings.TrimSpace(ownerID) == "" {
		return domain.NewValidationError("owner_id", "owner is required")
	}
	return nil
}

// IsNotFound reports whether err means a dashboard or an entry inside it is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
