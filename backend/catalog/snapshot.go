package catalog

import (
	"context"
	"errors"

	"courseplatform/backend/models"
	"courseplatform/backend/utils"
)

// Snapshot is the whole catalog tree, fetched in one call and shared by
// every consumer for the rest of the session.
type Snapshot struct {
	MainCourses           []models.Course      `json:"mainCourses"`
	IndependentSubCourses []models.Course      `json:"independentSubCourses"`
	Lecturers             []models.Lecturer    `json:"lecturers"`
	LecturersMap          []models.LecturerMap `json:"lecturersMap"`
	ActivePromotions      []models.Promotion   `json:"activePromotions"`
	TopThreeSubCourses    []models.Course      `json:"topThreeSubCourses"`
}

// Empty reports a successful fetch that returned no courses.
func (s *Snapshot) Empty() bool {
	return s == nil || (len(s.MainCourses) == 0 && len(s.IndependentSubCourses) == 0)
}

// Source loads a snapshot from the backing store.
type Source interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

// Cache holds the last snapshot. Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context) (*Snapshot, error)
	Set(ctx context.Context, s *Snapshot) error
	Invalidate(ctx context.Context) error
}

type LoadStatus string

const (
	StatusLoading LoadStatus = "loading"
	StatusError   LoadStatus = "error"
	StatusEmpty   LoadStatus = "empty"
	StatusReady   LoadStatus = "ready"
)

// StatusOf classifies a fetch result. The three outcomes are exclusive: an
// error never comes with a partial snapshot.
func StatusOf(s *Snapshot, err error) LoadStatus {
	switch {
	case err != nil:
		return StatusError
	case s == nil:
		return StatusLoading
	case s.Empty():
		return StatusEmpty
	default:
		return StatusReady
	}
}

type Aggregator struct {
	source Source
	cache  Cache
	log    *utils.Logger
}

// NewAggregator builds an aggregator. cache may be nil.
func NewAggregator(source Source, cache Cache, log *utils.Logger) *Aggregator {
	if log == nil {
		log = utils.NopLogger()
	}
	return &Aggregator{source: source, cache: cache, log: log.With("component", "catalog")}
}

// FetchCatalog returns the cached snapshot or loads a fresh one. Failures
// are wholesale: either a full snapshot or an error.
func (a *Aggregator) FetchCatalog(ctx context.Context) (*Snapshot, error) {
	if a.cache != nil {
		cached, err := a.cache.Get(ctx)
		if err != nil {
			a.log.Warn("catalog cache read failed", "error", err)
		} else if cached != nil {
			a.log.Debug("catalog cache hit")
			return cached, nil
		}
	}

	snap, err := a.source.LoadSnapshot(ctx)
	if err != nil {
		a.log.Error("catalog load failed", "error", err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, utils.Network("Catalog is unavailable", err)
		}
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, utils.Server("Could not load catalog", err)
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, snap); err != nil {
			a.log.Warn("catalog cache write failed", "error", err)
		}
	}
	a.log.Debug("catalog loaded",
		"main_courses", len(snap.MainCourses),
		"independent_sub_courses", len(snap.IndependentSubCourses),
		"promotions", len(snap.ActivePromotions),
	)
	return snap, nil
}

// Invalidate drops the cached snapshot after a catalog mutation.
func (a *Aggregator) Invalidate(ctx context.Context) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx); err != nil {
		a.log.Warn("catalog cache invalidation failed", "error", err)
	}
}
