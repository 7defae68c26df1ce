package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/brightstudy/internal/client/assets"
	"github.com/dmitrijs2005/brightstudy/internal/client/client"
	"github.com/dmitrijs2005/brightstudy/internal/client/library"
	"github.com/dmitrijs2005/brightstudy/internal/client/metrics"
	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/client/repositories/installed"
	"github.com/dmitrijs2005/brightstudy/internal/common"
	"github.com/dmitrijs2005/brightstudy/internal/logging"
)

type SyncService interface {
	// Preview classifies the remote inventory against local state without
	// changing anything.
	Preview(ctx context.Context) (models.Preview, error)
	// Apply reconciles every configured kind. Only one Apply or Install runs
	// at a time; a concurrent call gets common.ErrSyncInProgress.
	Apply(ctx context.Context) (*models.Summary, error)
	// Install fetches and installs a single item without a discovery pass.
	Install(ctx context.Context, kind models.Kind, id string) (*models.Outcome, error)
	// SaveGenerated stores an adaptive lesson. It is never recorded as installed.
	SaveGenerated(ctx context.Context, g *models.GeneratedLesson) error
	Installed(ctx context.Context) ([]*models.InstalledRecord, error)
	Catalog(ctx context.Context) ([]library.CatalogLesson, error)
}

// AssetEnsurer makes referenced binaries present on disk.
type AssetEnsurer interface {
	Ensure(ctx context.Context, ref models.VideoRef) (*assets.Result, error)
	EnsureVideo(ctx context.Context, v *models.Video) (*assets.Result, error)
}

// kindStrategy installs one fetched document. installed reports whether the
// item may be recorded; err explains why not.
type kindStrategy func(ctx context.Context, run *runState, doc *models.Document) (installed bool, err error)

type syncService struct {
	client     client.Client
	store      installed.Repository
	lib        *library.Library
	assets     AssetEnsurer
	log        logging.Logger
	kinds      []models.Kind
	strategies map[models.Kind]kindStrategy
	busy       atomic.Bool
	now        func() time.Time
}

// NewSyncService builds the engine. kinds restricts which kinds Apply and
// Preview look at; nil means all of them. Order is always concepts, lessons,
// videos.
func NewSyncService(c client.Client, store installed.Repository, lib *library.Library, a AssetEnsurer, log logging.Logger, kinds []models.Kind) SyncService {
	s := &syncService{
		client: c,
		store:  store,
		lib:    lib,
		assets: a,
		log:    log,
		kinds:  orderKinds(kinds),
		now:    time.Now,
	}
	s.strategies = map[models.Kind]kindStrategy{
		models.KindConcept: s.installConcept,
		models.KindLesson:  s.installLesson,
		models.KindVideo:   s.installVideo,
	}
	return s
}

func orderKinds(kinds []models.Kind) []models.Kind {
	if len(kinds) == 0 {
		return append([]models.Kind(nil), models.SyncOrder...)
	}
	want := make(map[models.Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	out := make([]models.Kind, 0, len(kinds))
	for _, k := range models.SyncOrder {
		if want[k] {
			out = append(out, k)
		}
	}
	return out
}

type itemKey struct {
	kind models.Kind
	id   string
}

// runState is the bookkeeping of one Apply or Install call.
type runState struct {
	id      string
	log     logging.Logger
	summary *models.Summary
	// attempted maps an item to whether it ended up installed
	attempted map[itemKey]bool
}

func (s *syncService) newRun() *runState {
	id := uuid.NewString()
	return &runState{
		id:        id,
		log:       s.log.With("run_id", id),
		summary:   &models.Summary{RunID: id, StartedAt: s.now()},
		attempted: make(map[itemKey]bool),
	}
}

func (s *syncService) Preview(ctx context.Context) (models.Preview, error) {
	return s.discover(ctx)
}

func (s *syncService) discover(ctx context.Context) (models.Preview, error) {
	plan := models.Preview{}
	for _, kind := range s.kinds {
		group := plan.For(kind)

		items, err := s.client.ListInventory(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrDiscoveryFailed, err)
		}

		for _, it := range items {
			v, found, err := s.store.GetVersion(ctx, it.ID, kind)
			if err != nil {
				return nil, fmt.Errorf("classify %s %s: %w", kind, it.ID, err)
			}
			item := models.PlanItem{ID: it.ID, Version: it.Version, Action: models.Classify(it.Version, v, found)}
			if found && item.Action == models.ActionUpdate {
				item.Installed = &v
			}
			group.Add(item)
		}
	}
	return plan, nil
}

func (s *syncService) Apply(ctx context.Context) (*models.Summary, error) {
	if !s.busy.CompareAndSwap(false, true) {
		metrics.RecordRun("busy", 0)
		return nil, common.ErrSyncInProgress
	}
	defer s.busy.Store(false)

	run := s.newRun()
	run.log.Info(ctx, "sync run started", "kinds", s.kinds)

	plan, err := s.discover(ctx)
	if err != nil {
		run.log.Error(ctx, "catalog discovery failed, nothing changed", "error", err)
		metrics.RecordRun("discovery_failed", 0)
		return nil, err
	}

	for _, kind := range s.kinds {
		group := plan.For(kind)

		run.summary.Skipped += len(group.Skip)
		for range group.Skip {
			metrics.RecordItem(string(kind), string(models.ActionSkip))
		}

		for _, item := range group.Pending() {
			if err := ctx.Err(); err != nil {
				return s.finish(ctx, run, "error"), err
			}
			if _, done := run.attempted[itemKey{kind, item.ID}]; done {
				continue
			}
			_, ok, err := s.installItem(ctx, run, kind, item.ID, item.Installed)
			s.count(ctx, run, kind, item.ID, item.Action, ok, err)
		}
	}

	return s.finish(ctx, run, "ok"), nil
}

func (s *syncService) finish(ctx context.Context, run *runState, result string) *models.Summary {
	run.summary.Duration = s.now().Sub(run.summary.StartedAt)
	metrics.RecordRun(result, run.summary.Duration)
	run.log.Info(ctx, "sync run finished",
		"new", run.summary.New,
		"updated", run.summary.Updated,
		"skipped", run.summary.Skipped,
		"failed", run.summary.Failed,
		"duration", run.summary.Duration)
	return run.summary
}

func (s *syncService) count(ctx context.Context, run *runState, kind models.Kind, id string, action models.Action, ok bool, err error) {
	if !ok {
		run.summary.Failed++
		metrics.RecordItem(string(kind), "failed")
		run.log.Warn(ctx, "item not installed, will retry next run", "kind", kind, "id", id, "error", err)
		return
	}

	switch action {
	case models.ActionNew:
		run.summary.New++
	default:
		run.summary.Updated++
	}
	metrics.RecordItem(string(kind), string(action))
	run.log.Info(ctx, "item installed", "kind", kind, "id", id, "action", action)
}

// installItem fetches one document, runs its kind strategy and records the
// version only when the strategy reports a complete install.
func (s *syncService) installItem(ctx context.Context, run *runState, kind models.Kind, id string, known *int64) (int64, bool, error) {
	key := itemKey{kind, id}
	run.attempted[key] = false

	strategy, ok := s.strategies[kind]
	if !ok {
		return 0, false, fmt.Errorf("%w: %s", common.ErrUnknownKind, kind)
	}

	doc, err := s.client.FetchPayload(ctx, kind, id, known)
	if err != nil {
		return 0, false, err
	}
	if doc.ID == "" {
		doc.ID = id
	}

	installedOK, err := strategy(ctx, run, doc)
	if !installedOK {
		return doc.Version, false, err
	}

	if err := s.store.SetVersion(ctx, id, kind, doc.Version); err != nil {
		return doc.Version, false, err
	}

	run.attempted[key] = true
	return doc.Version, true, nil
}

func (s *syncService) installConcept(ctx context.Context, run *runState, doc *models.Document) (bool, error) {
	c, err := models.DecodeConcept(doc.Raw, doc.ID)
	if err != nil {
		return false, err
	}

	var assetErrs []error
	for _, ref := range c.Videos {
		if _, err := s.assets.Ensure(ctx, ref); err != nil {
			assetErrs = append(assetErrs, err)
		}
	}

	// the payload is kept even when assets failed so the next run resumes
	if err := s.lib.WriteConcept(doc.ID, doc.Raw); err != nil {
		return false, err
	}

	if len(assetErrs) > 0 {
		return false, errors.Join(assetErrs...)
	}
	return true, nil
}

func (s *syncService) installLesson(ctx context.Context, run *runState, doc *models.Document) (bool, error) {
	l, err := models.DecodeLesson(doc.Raw, doc.ID)
	if err != nil {
		return false, err
	}
	l.ID = doc.ID

	if err := s.lib.WriteLesson(doc.ID, doc.Raw); err != nil {
		return false, err
	}
	if err := s.lib.UpdateLessonIndex(l); err != nil {
		return false, err
	}

	var missing []string
	for _, cid := range l.Concepts {
		ok, err := s.ensureConcept(ctx, run, cid)
		if err != nil {
			run.log.Warn(ctx, "referenced concept not installed", "lesson", doc.ID, "concept", cid, "error", err)
		}
		if !ok {
			missing = append(missing, cid)
		}
	}

	if len(missing) > 0 {
		return false, fmt.Errorf("%w: lesson %s needs concepts %v", common.ErrDependencyMissing, doc.ID, missing)
	}
	return true, nil
}

// ensureConcept reports whether concept id has an installed record, pulling
// it through the concept path when this run has not tried it yet.
func (s *syncService) ensureConcept(ctx context.Context, run *runState, id string) (bool, error) {
	_, found, err := s.store.GetVersion(ctx, id, models.KindConcept)
	if err != nil {
		return false, err
	}
	if found {
		return true, nil
	}

	if ok, done := run.attempted[itemKey{models.KindConcept, id}]; done {
		return ok, nil
	}

	_, ok, err := s.installItem(ctx, run, models.KindConcept, id, nil)
	s.count(ctx, run, models.KindConcept, id, models.ActionNew, ok, err)
	return ok, err
}

func (s *syncService) installVideo(ctx context.Context, run *runState, doc *models.Document) (bool, error) {
	v, err := models.DecodeVideo(doc.Raw, doc.ID)
	if err != nil {
		return false, err
	}
	v.ID = doc.ID

	if _, err := s.assets.EnsureVideo(ctx, v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *syncService) Install(ctx context.Context, kind models.Kind, id string) (*models.Outcome, error) {
	if _, ok := s.strategies[kind]; !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownKind, kind)
	}
	if err := library.CheckID(id); err != nil {
		return nil, err
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, common.ErrSyncInProgress
	}
	defer s.busy.Store(false)

	prev, found, err := s.store.GetVersion(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	var known *int64
	if found {
		known = &prev
	}

	run := s.newRun()
	version, ok, err := s.installItem(ctx, run, kind, id, known)

	out := &models.Outcome{
		Kind:      kind,
		ID:        id,
		Version:   version,
		Action:    models.Classify(version, prev, found),
		Installed: ok,
	}
	if err != nil {
		out.Error = err.Error()
		run.log.Warn(ctx, "install failed", "kind", kind, "id", id, "error", err)
	} else {
		run.log.Info(ctx, "installed on demand", "kind", kind, "id", id, "version", version)
	}
	return out, nil
}

func (s *syncService) SaveGenerated(ctx context.Context, g *models.GeneratedLesson) error {
	for i := range g.Concepts {
		c := &g.Concepts[i]
		raw, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal generated concept %s: %w", c.ID, err)
		}
		if err := s.lib.WriteConcept(c.ID, raw); err != nil {
			return err
		}
	}

	raw, err := json.Marshal(&g.Lesson)
	if err != nil {
		return fmt.Errorf("marshal generated lesson %s: %w", g.Lesson.ID, err)
	}
	if err := s.lib.WriteLesson(g.Lesson.ID, raw); err != nil {
		return err
	}
	if err := s.lib.UpdateLessonIndex(&g.Lesson); err != nil {
		return err
	}

	s.log.Info(ctx, "generated lesson saved", "id", g.Lesson.ID, "base", g.BaseID, "mode", g.Mode)
	return nil
}

func (s *syncService) Installed(ctx context.Context) ([]*models.InstalledRecord, error) {
	return s.store.All(ctx)
}

func (s *syncService) Catalog(ctx context.Context) ([]library.CatalogLesson, error) {
	return s.lib.LoadCatalog()
}
