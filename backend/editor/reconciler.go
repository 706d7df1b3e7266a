package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"golang.org/x/sync/errgroup"
)

// Store is what a module save needs from persistence.
type Store interface {
	// UpsertModule creates the module when m.ID is empty (assigning the id)
	// and updates title and duration otherwise.
	UpsertModule(ctx context.Context, m *models.Module) error
	DeleteLecturesByModule(ctx context.Context, moduleID string) error
	CreateLecture(ctx context.Context, l *models.Lecture) error
}

// Transactor runs fn against a Store. Stores backed by a database run it in
// one transaction so a failed recreate rolls back the bulk delete.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type direct struct{ store Store }

func (d direct) WithinTx(ctx context.Context, fn func(Store) error) error { return fn(d.store) }

// Direct runs saves straight against store with no transaction.
func Direct(store Store) Transactor { return direct{store: store} }

type SaveStep string

const (
	StepUpsert   SaveStep = "upsert_module"
	StepDelete   SaveStep = "delete_lectures"
	StepRecreate SaveStep = "recreate_lectures"
)

// SaveError describes where a save stopped. For StepRecreate, Created and
// Failed list the lecture ids that did and did not make it.
type SaveError struct {
	Step    SaveStep
	Created []string
	Failed  []string
	Err     error
}

func (e *SaveError) Error() string {
	if e.Step == StepRecreate {
		return fmt.Sprintf("%s: %d of %d lectures failed: %v", e.Step, len(e.Failed), len(e.Failed)+len(e.Created), e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

type Reconciler struct {
	log           *utils.Logger
	timeout       time.Duration
	maxConcurrent int
}

func NewReconciler(log *utils.Logger, timeout time.Duration, maxConcurrent int) *Reconciler {
	if log == nil {
		log = utils.NopLogger()
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Reconciler{log: log.With("component", "reconciler"), timeout: timeout, maxConcurrent: maxConcurrent}
}

// Save persists the session: upsert the module, delete every stored lecture
// of it, then recreate all drafts in editor order as <moduleId>-01, -02, …
// Recreates run concurrently and the save waits for all of them.
func (r *Reconciler) Save(ctx context.Context, s *Session, tx Transactor) (*models.Module, error) {
	switch s.state {
	case StateSaving:
		return nil, utils.Conflict("Module is being saved")
	case StateSaved, StateIdle:
		return nil, utils.Conflict("Module editing session is closed")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	s.state = StateSaving
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	s.recomputeDuration()
	module := &models.Module{
		ID:       string(s.ModuleID),
		CourseID: s.CourseID,
		Title:    s.Title,
		Duration: s.Duration,
	}
	var lectures []models.Lecture

	err := tx.WithinTx(ctx, func(store Store) error {
		if err := store.UpsertModule(ctx, module); err != nil {
			return &SaveError{Step: StepUpsert, Err: err}
		}
		// A retry after a failed save must target the same module.
		s.ModuleID = PersistedID(module.ID)
		if err := store.DeleteLecturesByModule(ctx, module.ID); err != nil {
			return &SaveError{Step: StepDelete, Err: err}
		}
		lectures = s.lectures(module.ID)
		return r.recreate(ctx, store, lectures)
	})
	if err != nil {
		s.state = StateFailed
		r.log.Error("module save failed", "module_id", module.ID, "course_id", module.CourseID, "error", err)
		return nil, saveFailure(err)
	}

	s.state = StateSaved
	s.ModuleID = PersistedID(module.ID)
	for i, d := range s.drafts {
		d.ID = PersistedID(lectures[i].ID)
	}
	module.Lectures = lectures
	r.log.Info("module saved", "module_id", module.ID, "lectures", len(lectures), "duration", module.Duration)
	return module, nil
}

func (r *Reconciler) recreate(ctx context.Context, store Store, lectures []models.Lecture) error {
	var (
		mu       sync.Mutex
		created  []string
		failed   []string
		firstErr error
	)
	g := new(errgroup.Group)
	g.SetLimit(r.maxConcurrent)
	for i := range lectures {
		l := &lectures[i]
		g.Go(func() error {
			err := store.CreateLecture(ctx, l)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, l.ID)
				if firstErr == nil {
					firstErr = err
				}
				return nil
			}
			created = append(created, l.ID)
			return nil
		})
	}
	_ = g.Wait()
	if len(failed) > 0 {
		return &SaveError{Step: StepRecreate, Created: created, Failed: failed, Err: firstErr}
	}
	return nil
}

// saveFailure turns a failed save into a user-facing error. Messages from
// the store are kept verbatim; a partial recreate is reported generically.
func saveFailure(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return utils.Network("Saving the module timed out", err)
	}
	var saveErr *SaveError
	if errors.As(err, &saveErr) {
		var appErr *utils.AppError
		switch {
		case saveErr.Step == StepRecreate:
			return utils.Server("Some lectures could not be saved; open the module and save again", err)
		case errors.As(saveErr.Err, &appErr):
			return &utils.AppError{Kind: appErr.Kind, Message: appErr.Message, Err: err}
		case saveErr.Step == StepUpsert:
			return utils.Server("Could not save module", err)
		default:
			return utils.Server("Could not replace module lectures", err)
		}
	}
	return utils.Server("Could not save module", err)
}
