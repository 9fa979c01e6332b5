package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
	"github.com/andresuchdata/eventdesk/backend-go/internal/metrics"
	"github.com/andresuchdata/eventdesk/backend-go/internal/repository"
	"github.com/andresuchdata/eventdesk/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const backupPrefix = "dashboards"

// BackupService copies dashboard documents to and from object storage.
type BackupService struct {
	repo  repository.DashboardRepository
	store storage.ObjectStorage
	now   func() time.Time
}

func NewBackupService(repo repository.DashboardRepository, store storage.ObjectStorage) *BackupService {
	return &BackupService{
		repo:  repo,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ExportAll writes every dashboard of a role as JSON under
// dashboards/<role>/<owner>.json.
func (s *BackupService) ExportAll(ctx context.Context, role domain.Role, concurrency int) (int, error) {
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
			d, err := s.repo.Get(gctx, role, owner)
			if err != nil {
				return err
			}
			payload, err := json.Marshal(d)
			if err != nil {
				return fmt.Errorf("encode dashboard %s: %w", d.Key(), err)
			}
			return s.store.PutObject(gctx, backupKey(role, owner), payload, "application/json")
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	log.Info().Str("role", string(role)).Int("dashboards", len(owners)).Msg("backup: export finished")
	return len(owners), nil
}

// RestoreAll loads every exported dashboard of a role back into the
// repository. Metrics are recomputed before saving so a restored document
// is consistent even if the backup was edited by hand.
func (s *BackupService) RestoreAll(ctx context.Context, role domain.Role) (int, error) {
	prefix := path.Join(backupPrefix, string(role)) + "/"
	objects, err := s.store.ListObjects(ctx, prefix)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, object := range objects {
		owner := strings.TrimSuffix(strings.TrimPrefix(object.Key, prefix), ".json")
		if owner == "" || strings.Contains(owner, "/") {
			log.Warn().Str("key", object.Key).Msg("backup: skipping unexpected object")
			continue
		}

		payload, err := s.store.GetObject(ctx, object.Key)
		if err != nil {
			return restored, err
		}
		var d domain.Dashboard
		if err := json.Unmarshal(payload, &d); err != nil {
			return restored, fmt.Errorf("decode %s: %w", object.Key, err)
		}
		d.Role = role
		d.OwnerID = owner
		if err := metrics.Recompute(&d, s.now()); err != nil {
			return restored, err
		}
		if err := s.repo.Save(ctx, &d); err != nil {
			return restored, err
		}
		restored++
	}

	log.Info().Str("role", string(role)).Int("dashboards", restored).Msg("backup: restore finished")
	return restored, nil
}

func backupKey(role domain.Role, ownerID string) string {
	return path.Join(backupPrefix, string(role), ownerID+".json")
}
