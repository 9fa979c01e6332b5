package domain

import "strings"

// Role identifies which side of the marketplace owns a dashboard.
type Role string

const (
	RolePlanner Role = "planner"
	RoleVendor  Role = "vendor"
	// RoleClient books planners and vendors and reviews them. Clients own no dashboard.
	RoleClient  Role = "client"
)

// Work item statuses. Planner events use booked/ongoing, vendor orders use
// accepted/in-progress; pending, completed and cancelled are shared.
const (
	StatusPending    = "pending"
	StatusBooked     = "booked"
	StatusOngoing    = "ongoing"
	StatusAccepted   = "accepted"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Task statuses.
const (
	TaskPending = "pending"
	TaskDone    = "done"
)

var workItemStatuses = map[Role][]string{
	RolePlanner: {StatusPending, StatusBooked, StatusOngoing, StatusCompleted, StatusCancelled},
	RoleVendor:  {StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled},
}

var paymentStatuses = map[Role][]string{
	RolePlanner: {PaymentPending, PaymentPaid, PaymentFailed},
	RoleVendor:  {PaymentPending, PaymentPaid},
}

// ParseRole returns the role for a label (case-insensitive). Plural path
// segments such as "vendors" are accepted.
func ParseRole(label string) (Role, bool) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(label)), "s") {
	case string(RolePlanner):
		return RolePlanner, true
	case string(RoleVendor):
		return RoleVendor, true
	}
	return "", false
}

// WorkItemStatuses returns the ordered status set for the role's work items.
func WorkItemStatuses(role Role) []string {
	return workItemStatuses[role]
}

// ParseWorkItemStatus normalises a status label and reports whether it is
// valid for the role.
func ParseWorkItemStatus(role Role, label string) (string, bool) {
	return lookup(workItemStatuses[role], label)
}

// ParsePaymentStatus normalises a payment status label for the role.
func ParsePaymentStatus(role Role, label string) (string, bool) {
	return lookup(paymentStatuses[role], label)
}

// ParseTaskStatus normalises a task status label.
func ParseTaskStatus(label string) (string, bool) {
	return lookup([]string{TaskPending, TaskDone}, label)
}

func lookup(allowed []string, label string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for _, s := range allowed {
		if s == normalized {
			return s, true
		}
	}
	return "", false
}
