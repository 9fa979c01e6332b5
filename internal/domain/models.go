package domain

import "time"

// WorkItem is an event (planner) or an order (vendor) tracked on a dashboard.
type WorkItem struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"client_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Payments    []Payment  `json:"payments"`
	// Tasks and VendorIDs are only populated for planner events.
	Tasks     []Task    `json:"tasks,omitempty"`
	VendorIDs []string  `json:"vendor_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Task returns the task with the given id.
func (w *WorkItem) Task(id string) (*Task, bool) {
	for i := range w.Tasks {
		if w.Tasks[i].ID == id {
			return &w.Tasks[i], true
		}
	}
	return nil, false
}

// Payment is a single ledger entry on a work item. Payments are append-only.
type Payment struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	Method    string    `json:"method,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is a planner to-do attached to an event.
type Task struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
	Status  string    `json:"status"`
}

// Rating is one client's review of a dashboard owner. There is at most one
// rating per reviewer on a dashboard.
type Rating struct {
	ReviewerID string    `json:"reviewer_id"`
	Score      int       `json:"score"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RatingInput is a submitted review. Score is a pointer so a missing score
// can be told apart from zero.
type RatingInput struct {
	ReviewerID string
	Score      *int
	Comment    string
}

// Notification is a message shown on the owner's dashboard.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// UpcomingDeadline is a derived projection of a pending task that is not yet due.
type UpcomingDeadline struct {
	EventID   string    `json:"event_id"`
	TaskTitle string    `json:"task_title"`
	DueDate   time.Time `json:"due_date"`
	Status    string    `json:"status"`
}

// DashboardSummary is the row-level view of a dashboard used for listings.
type DashboardSummary struct {
	Role           Role    `json:"role" db:"owner_role"`
	OwnerID        string  `json:"owner_id" db:"owner_id"`
	TotalRevenue   float64 `json:"total_revenue" db:"total_revenue"`
	PendingRevenue float64 `json:"pending_revenue" db:"pending_revenue"`
	AverageRating  float64 `json:"average_rating" db:"average_rating"`
	RatingCount    int     `json:"rating_count" db:"rating_count"`
	WorkItemCount  int     `json:"work_item_count" db:"work_item_count"`
}
