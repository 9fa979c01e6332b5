package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
)

func vendorFixture() *domain.Dashboard {
	d := domain.NewDashboard(domain.RoleVendor, "vendor-1", fixedNow)
	d.Items = []domain.WorkItem{
		{ID: "o1", Status: domain.StatusAccepted, Payments: []domain.Payment{{Amount: 200, Status: domain.PaymentPaid}}},
		{ID: "o2", Status: domain.StatusInProgress, Payments: []domain.Payment{{Amount: 80, Status: domain.PaymentPending}}},
		{ID: "o3", Status: domain.StatusInProgress},
		{ID: "o4", Status: domain.StatusCancelled, Payments: []domain.Payment{{Amount: 10, Status: domain.PaymentPaid}}},
	}
	d.Ratings = []domain.Rating{{ReviewerID: "A", Score: 4}, {ReviewerID: "B", Score: 5}}
	return d
}

func TestRecomputeVendor(t *testing.T) {
	d := vendorFixture()
	RecomputeVendor(d)

	wantCounts := map[string]int{
		domain.StatusPending:    0,
		domain.StatusAccepted:   1,
		domain.StatusInProgress: 2,
		domain.StatusCompleted:  0,
		domain.StatusCancelled:  1,
	}
	for status, want := range wantCounts {
		if got := d.StatusCounts[status]; got != want {
			t.Fatalf("StatusCounts[%s]=%d, want %d", status, got, want)
		}
	}
	if d.TotalRevenue != 210 || d.PendingRevenue != 80 {
		t.Fatalf("revenue=(%v,%v), want (210,80)", d.TotalRevenue, d.PendingRevenue)
	}
	if math.Abs(d.AverageRating-4.5) > 1e-9 {
		t.Fatalf("AverageRating=%v, want 4.5", d.AverageRating)
	}
	if d.UpcomingDeadlines != nil {
		t.Fatalf("vendor dashboard has deadlines: %+v", d.UpcomingDeadlines)
	}
}

func TestRecomputeVendorIdempotent(t *testing.T) {
	d := vendorFixture()
	RecomputeVendor(d)
	first := d.Metrics.Clone()

	RecomputeVendor(d)
	if !first.Equal(d.Metrics) {
		t.Fatalf("second run changed metrics: %+v vs %+v", first, d.Metrics)
	}
}

func TestVendorMeanMatchesRatingPath(t *testing.T) {
	d := vendorFixture()
	var mean float64
	var err error
	d.Ratings, mean, err = UpsertRating(d.Ratings, ratingInput("C", 2), time.Now())
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	RecomputeVendor(d)
	if d.AverageRating != mean {
		t.Fatalf("engine mean %v != rating path mean %v", d.AverageRating, mean)
	}
}

func TestRecomputeDispatch(t *testing.T) {
	v := vendorFixture()
	if err := Recompute(v, fixedNow); err != nil {
		t.Fatalf("Recompute vendor: %v", err)
	}
	if v.TotalRevenue != 210 {
		t.Fatalf("vendor TotalRevenue=%v, want 210", v.TotalRevenue)
	}

	p := plannerFixture()
	if err := Recompute(p, fixedNow); err != nil {
		t.Fatalf("Recompute planner: %v", err)
	}
	if len(p.UpcomingDeadlines) != 2 {
		t.Fatalf("planner deadlines=%d, want 2", len(p.UpcomingDeadlines))
	}

	bad := &domain.Dashboard{Role: "client"}
	if err := Recompute(bad, fixedNow); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func ratingInput(reviewer string, s int) domain.RatingInput {
	return domain.RatingInput{ReviewerID: reviewer, Score: &s}
}
