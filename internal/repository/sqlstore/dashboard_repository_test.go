package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGetMissingDashboard(t *testing.T) {
	repo := NewDashboardRepository(newTestDB(t))
	_, err := repo.Get(context.Background(), domain.RoleVendor, "nobody")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestGetOrCreateProvisionsOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewDashboardRepository(newTestDB(t))
	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	d, created, err := repo.GetOrCreate(ctx, domain.RolePlanner, "p1", now)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !created {
		t.Fatal("first GetOrCreate did not report creation")
	}
	if d.OwnerID != "p1" || d.Role != domain.RolePlanner || d.TotalRevenue != 0 {
		t.Fatalf("unexpected dashboard: %+v", d)
	}

	again, created, err := repo.GetOrCreate(ctx, domain.RolePlanner, "p1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if created {
		t.Fatal("second GetOrCreate reported creation")
	}
	if !again.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt=%v, want %v", again.CreatedAt, now)
	}
	if len(again.StatusCounts) != 5 {
		t.Fatalf("StatusCounts=%v, want five zero counters", again.StatusCounts)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewDashboardRepository(newTestDB(t))
	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	d := domain.NewDashboard(domain.RoleVendor, "v1", now)
	if _, err := d.AddItem(domain.WorkItem{
		ID:       "o1",
		ClientID: "c1",
		Status:   domain.StatusAccepted,
		Payments: []domain.Payment{{ID: "pay1", Amount: 120, Status: domain.PaymentPaid, CreatedAt: now}},
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	d.TotalRevenue = 120
	d.Ratings = []domain.Rating{{ReviewerID: "c1", Score: 4, CreatedAt: now}}
	d.AverageRating = 4

	if err := repo.Save(ctx, d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Saving twice exercises the upsert branch.
	d.PendingRevenue = 7
	if err := repo.Save(ctx, d); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	got, err := repo.Get(ctx, domain.RoleVendor, "v1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	item, ok := got.Item("o1")
	if !ok {
		t.Fatal("work item o1 missing after round trip")
	}
	if len(item.Payments) != 1 || item.Payments[0].Amount != 120 {
		t.Fatalf("payments=%+v", item.Payments)
	}
	if got.TotalRevenue != 120 || got.PendingRevenue != 7 || got.AverageRating != 4 {
		t.Fatalf("metrics=%+v", got.Metrics)
	}
}

func TestTopRatedAndListOwners(t *testing.T) {
	ctx := context.Background()
	repo := NewDashboardRepository(newTestDB(t))
	now := time.Now().UTC()

	seed := []struct {
		owner  string
		scores []int
	}{
		{owner: "v-low", scores: []int{2}},
		{owner: "v-high", scores: []int{5, 5}},
		{owner: "v-mid", scores: []int{4, 3}},
		{owner: "v-none"},
	}
	for _, s := range seed {
		d := domain.NewDashboard(domain.RoleVendor, s.owner, now)
		sum := 0
		for i, sc := range s.scores {
			d.Ratings = append(d.Ratings, domain.Rating{ReviewerID: string(rune('a' + i)), Score: sc})
			sum += sc
		}
		if len(s.scores) > 0 {
			d.AverageRating = float64(sum) / float64(len(s.scores))
		}
		if err := repo.Save(ctx, d); err != nil {
			t.Fatalf("Save %s: %v", s.owner, err)
		}
	}
	if err := repo.Save(ctx, domain.NewDashboard(domain.RolePlanner, "p1", now)); err != nil {
		t.Fatalf("Save planner: %v", err)
	}

	top, err := repo.TopRated(ctx, domain.RoleVendor, 2)
	if err != nil {
		t.Fatalf("TopRated: %v", err)
	}
	if len(top) != 2 || top[0].OwnerID != "v-high" || top[1].OwnerID != "v-mid" {
		t.Fatalf("top=%+v", top)
	}
	if top[0].RatingCount != 2 || top[0].Role != domain.RoleVendor {
		t.Fatalf("top[0]=%+v", top[0])
	}

	owners, err := repo.ListOwners(ctx, domain.RoleVendor)
	if err != nil {
		t.Fatalf("ListOwners: %v", err)
	}
	want := []string{"v-high", "v-low", "v-mid", "v-none"}
	if len(owners) != len(want) {
		t.Fatalf("owners=%v, want %v", owners, want)
	}
	for i := range want {
		if owners[i] != want[i] {
			t.Fatalf("owners=%v, want %v", owners, want)
		}
	}
}
