package metrics

import "github.com/andresuchdata/eventdesk/backend-go/internal/domain"

// RecomputeVendor overwrites the status counters, revenue totals and average
// rating of a vendor dashboard. Vendors have no deadlines.
func RecomputeVendor(d *domain.Dashboard) {
	d.StatusCounts = countStatuses(domain.RoleVendor, d.Items)
	d.TotalRevenue, d.PendingRevenue = FoldPayments(d.Items)
	d.AverageRating = MeanRating(d.Ratings)
	d.UpcomingDeadlines = nil
}
