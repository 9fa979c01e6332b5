package metrics

import (
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
)

// RecomputePlanner overwrites the status counters, revenue totals, average
// rating and upcoming deadlines of a planner dashboard.
func RecomputePlanner(d *domain.Dashboard, now time.Time) {
	d.StatusCounts = countStatuses(domain.RolePlanner, d.Items)
	d.TotalRevenue, d.PendingRevenue = FoldPayments(d.Items)
	d.AverageRating = MeanRating(d.Ratings)
	d.UpcomingDeadlines = UpcomingDeadlines(d.Items, now)
}

// UpcomingDeadlines projects every pending task due at or after now, in
// event order then task order.
func UpcomingDeadlines(events []domain.WorkItem, now time.Time) []domain.UpcomingDeadline {
	var out []domain.UpcomingDeadline
	for _, event := range events {
		for _, task := range event.Tasks {
			if task.Status != domain.TaskPending || task.DueDate.Before(now) {
				continue
			}
			out = append(out, domain.UpcomingDeadline{
				EventID:   event.ID,
				TaskTitle: task.Title,
				DueDate:   task.DueDate,
				Status:    task.Status,
			})
		}
	}
	return out
}

// countStatuses returns one counter per known status of the role. Items in
// an unknown status are counted under their own label so the counters
// still sum to the number of items.
func countStatuses(role domain.Role, items []domain.WorkItem) map[string]int {
	counts := make(map[string]int)
	for _, s := range domain.WorkItemStatuses(role) {
		counts[s] = 0
	}
	for _, item := range items {
		counts[item.Status]++
	}
	return counts
}
