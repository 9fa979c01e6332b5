package domain

import (
	"fmt"
	"time"
)

// Metrics holds the fields derived from a dashboard's work items and ratings.
// They are overwritten by the metrics engines and never edited directly.
type Metrics struct {
	StatusCounts      map[string]int     `json:"status_counts"`
	TotalRevenue      float64            `json:"total_revenue"`
	PendingRevenue    float64            `json:"pending_revenue"`
	AverageRating     float64            `json:"average_rating"`
	UpcomingDeadlines []UpcomingDeadline `json:"upcoming_deadlines,omitempty"`
}

// Equal reports whether two metric snapshots carry the same values.
func (m Metrics) Equal(o Metrics) bool {
	if m.TotalRevenue != o.TotalRevenue || m.PendingRevenue != o.PendingRevenue || m.AverageRating != o.AverageRating {
		return false
	}
	if len(m.StatusCounts) != len(o.StatusCounts) {
		return false
	}
	for k, v := range m.StatusCounts {
		if ov, ok := o.StatusCounts[k]; !ok || ov != v {
			return false
		}
	}
	if len(m.UpcomingDeadlines) != len(o.UpcomingDeadlines) {
		return false
	}
	for i, d := range m.UpcomingDeadlines {
		od := o.UpcomingDeadlines[i]
		if d.EventID != od.EventID || d.TaskTitle != od.TaskTitle || d.Status != od.Status || !d.DueDate.Equal(od.DueDate) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the snapshot.
func (m Metrics) Clone() Metrics {
	out := m
	if m.StatusCounts != nil {
		out.StatusCounts = make(map[string]int, len(m.StatusCounts))
		for k, v := range m.StatusCounts {
			out.StatusCounts[k] = v
		}
	}
	if m.UpcomingDeadlines != nil {
		out.UpcomingDeadlines = append([]UpcomingDeadline(nil), m.UpcomingDeadlines...)
	}
	return out
}

// Dashboard is the per-owner aggregate. Work items are stored in insertion
// order and addressed by identity through Item; the aggregate is their only
// owner.
type Dashboard struct {
	Role          Role           `json:"role"`
	OwnerID       string         `json:"owner_id"`
	Items         []WorkItem     `json:"items"`
	Ratings       []Rating       `json:"ratings"`
	Notifications []Notification `json:"notifications"`
	Metrics
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	index map[string]int
}

// NewDashboard returns an empty dashboard with zero-valued metrics.
func NewDashboard(role Role, ownerID string, now time.Time) *Dashboard {
	counts := make(map[string]int)
	for _, s := range WorkItemStatuses(role) {
		counts[s] = 0
	}
	return &Dashboard{
		Role:          role,
		OwnerID:       ownerID,
		Items:         []WorkItem{},
		Ratings:       []Rating{},
		Notifications: []Notification{},
		Metrics:       Metrics{StatusCounts: counts},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Key identifies the dashboard in storage and caches.
func (d *Dashboard) Key() string {
	return DashboardKey(d.Role, d.OwnerID)
}

// DashboardKey builds the storage key for a role and owner.
func DashboardKey(role Role, ownerID string) string {
	return fmt.Sprintf("%s:%s", role, ownerID)
}

// Item returns the work item with the given id.
func (d *Dashboard) Item(id string) (*WorkItem, bool) {
	i, ok := d.lookup(id)
	if !ok {
		return nil, false
	}
	return &d.Items[i], true
}

// AddItem appends a work item and indexes it. Identities must be unique.
func (d *Dashboard) AddItem(item WorkItem) (*WorkItem, error) {
	if item.ID == "" {
		return nil, NewValidationError("id", "work item id is required")
	}
	if _, exists := d.lookup(item.ID); exists {
		return nil, NewValidationError("id", fmt.Sprintf("work item %s already exists", item.ID))
	}
	d.Items = append(d.Items, item)
	d.index[item.ID] = len(d.Items) - 1
	return &d.Items[len(d.Items)-1], nil
}

// Notification returns the notification with the given id.
func (d *Dashboard) Notification(id string) (*Notification, bool) {
	for i := range d.Notifications {
		if d.Notifications[i].ID == id {
			return &d.Notifications[i], true
		}
	}
	return nil, false
}

// Summary returns the listing view of the dashboard.
func (d *Dashboard) Summary() DashboardSummary {
	return DashboardSummary{
		Role:           d.Role,
		OwnerID:        d.OwnerID,
		TotalRevenue:   d.TotalRevenue,
		PendingRevenue: d.PendingRevenue,
		AverageRating:  d.AverageRating,
		RatingCount:    len(d.Ratings),
		WorkItemCount:  len(d.Items),
	}
}

func (d *Dashboard) lookup(id string) (int, bool) {
	if i, ok := d.index[id]; ok && i < len(d.Items) && d.Items[i].ID == id {
		return i, true
	}
	// Items is exported for encoding, so rebuild when it has drifted from the index.
	d.reindex()
	i, ok := d.index[id]
	return i, ok
}

func (d *Dashboard) reindex() {
	d.index = make(map[string]int, len(d.Items))
	for i := range d.Items {
		d.index[d.Items[i].ID] = i
	}
}
