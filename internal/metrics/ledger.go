// Package metrics derives the summary fields of a dashboard from its work
// items, payments, tasks and ratings. Every function here is pure CPU work
// over an in-memory aggregate.
package metrics

import "github.com/andresuchdata/eventdesk/backend-go/internal/domain"

// FoldPayments sums paid and pending payment amounts across every work item.
// Payments in any other status are ignored. Amounts are not validated.
func FoldPayments(items []domain.WorkItem) (totalRevenue, pendingRevenue float64) {
	for _, item := range items {
		for _, p := range item.Payments {
			switch p.Status {
			case domain.PaymentPaid:
				totalRevenue += p.Amount
			case domain.PaymentPending:
				pendingRevenue += p.Amount
			}
		}
	}
	return totalRevenue, pendingRevenue
}
