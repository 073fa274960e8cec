package sync

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	gosync "sync"
	"time"

	"catalog-sync/core/logger"
	"catalog-sync/core/models"
	"catalog-sync/core/report"
	"catalog-sync/core/resolve"
	"catalog-sync/core/storage"
	"catalog-sync/core/update"
	"catalog-sync/feature/sheet"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Backend is one configured backend of a run.
type Backend interface {
	Lookup() resolve.Lookup
	Updaters(ctx context.Context) []update.Updater
}

// Target selects the backends a run updates.
type Target string

const (
	TargetAll    Target = "all"
	TargetRetail Target = "retail"
	TargetEcom   Target = "ecom"
)

// ParseTarget validates a target name. Empty means all.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case "":
		return TargetAll, nil
	case TargetAll, TargetRetail, TargetEcom:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown update target %q", models.ErrValidation, s)
	}
}

func (t Target) includes(b models.Backend) bool {
	return t == TargetAll || t == "" || string(t) == string(b)
}

// Options are the flags of one run.
type Options struct {
	Target            Target
	Force             bool
	DryRun            bool
	SetWeight         bool
	Concurrency       int
	ByManufacturerSKU bool
	Policy            resolve.DuplicatePolicy
	OutDir            string
	Upload            bool
}

// Result is the outcome of a run.
type Result struct {
	RunID    string
	Summary  report.Summary
	Files    []string
	Uploaded []string
}

// Service runs sheet rows through resolution and the updaters.
type Service struct {
	resolver *resolve.Resolver
	backends map[models.Backend]Backend
	storage  storage.Client
	bucket   string
	prefix   string
	logger   *zap.Logger
	clock    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithBackend registers a configured backend.
func WithBackend(b models.Backend, backend Backend) Option {
	return func(s *Service) { s.backends[b] = backend }
}

// WithStorage enables report uploads to bucket under prefix.
func WithStorage(client storage.Client, bucket, prefix string) Option {
	return func(s *Service) {
		s.storage = client
		s.bucket = bucket
		s.prefix = prefix
	}
}

// WithClock overrides the report timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// NewService creates a run service.
func NewService(resolver *resolve.Resolver, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		resolver: resolver,
		backends: map[models.Backend]Backend{},
		logger:   logger,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) active(target Target) map[models.Backend]Backend {
	out := map[models.Backend]Backend{}
	for b, backend := range s.backends {
		if backend != nil && target.includes(b) {
			out[b] = backend
		}
	}
	return out
}

// Run synchronizes the rows of sh. It fails before any work only when no
// backend is usable or resolution aborts on a duplicate key; every other
// failure ends up in the report.
func (s *Service) Run(ctx context.Context, sh *sheet.Sheet, opts Options) (*Result, error) {
	backends := s.active(opts.Target)
	if len(backends) == 0 {
		return nil, fmt.Errorf("%w for target %s", models.ErrNoCredentials, opts.Target)
	}

	runID := uuid.NewString()
	log := logger.WithRun(s.logger, runID)
	agg := report.NewAggregator(runID, opts.DryRun)

	// 1. Resolve
	req := resolve.Request{
		Keys:              sh.SKUs(),
		Concurrency:       opts.Concurrency,
		ByManufacturerSKU: opts.ByManufacturerSKU,
		Policy:            opts.Policy,
	}
	if b, ok := backends[models.BackendRetail]; ok {
		req.Retail = b.Lookup()
	}
	if b, ok := backends[models.BackendEcom]; ok {
		req.Ecom = b.Lookup()
	}

	log.Info("Resolving SKUs", zap.Int("keys", len(req.Keys)))
	batch, err := s.resolver.Resolve(ctx, req)
	if batch == nil {
		return nil, fmt.Errorf("resolution failed: %w", err)
	}
	if err != nil {
		log.Warn("Resolution interrupted", zap.Error(err))
		agg.AddWarning("resolution interrupted: " + err.Error())
	}
	for sku, ferr := range batch.Failed {
		agg.AddFailure(report.Failure{SKU: sku, Error: update.Describe(ferr), Stage: report.StageResolve})
	}
	for _, w := range batch.Warnings {
		agg.AddWarning(w)
	}
	log.Info("SKUs resolved",
		zap.Int("matches", len(batch.Matches)),
		zap.Int("cache_hits", batch.CacheHits),
		zap.Int("looked_up", batch.Looked),
		zap.Int("failed", len(batch.Failed)),
	)

	// 2. Build requests
	plans, processed := s.plan(ctx, sh, batch.Matches, backends, opts)
	agg.SetRows(sh.Total, processed, sh.Total-processed)

	// 3. Update backends concurrently, updaters of one backend in order
	var g errgroup.Group
	for b, ops := range plans {
		log := log.With(zap.String("backend", string(b)))
		g.Go(func() error {
			for _, p := range ops {
				results := update.ApplyAll(ctx, p.updater, p.requests, update.Options{
					Force:  opts.Force,
					DryRun: opts.DryRun,
				})
				agg.Add(results...)
				log.Info("Operation finished",
					zap.String("operation", string(p.updater.Name())),
					zap.Int("requests", len(p.requests)),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	// 4. Report
	summary := agg.Summary(s.clock())
	res := &Result{RunID: runID, Summary: summary}
	files, err := report.WriteAll(opts.OutDir, summary)
	res.Files = files
	if err != nil {
		return res, fmt.Errorf("failed to write reports: %w", err)
	}

	if opts.Upload && s.storage != nil {
		res.Uploaded = s.upload(context.WithoutCancel(ctx), log, runID, files)
	}

	log.Info("Sync finished",
		zap.Int("updates", summary.Updates()),
		zap.Int("errors", summary.Errors),
		zap.Int("warnings", len(summary.Warnings)),
	)
	return res, nil
}

type plannedOp struct {
	updater  update.Updater
	requests []models.UpdateRequest
}

// plan builds the requests of every updater and counts rows with at least
// one matched target backend.
func (s *Service) plan(ctx context.Context, sh *sheet.Sheet, matches map[string]models.Match, backends map[models.Backend]Backend, opts Options) (map[models.Backend][]plannedOp, int) {
	processed := 0
	for _, row := range sh.Rows {
		m, ok := matches[row.SKU]
		if !ok {
			continue
		}
		for b := range backends {
			if m.Has(b) {
				processed++
				break
			}
		}
	}

	plans := map[models.Backend][]plannedOp{}
	for b, backend := range backends {
		for _, u := range backend.Updaters(ctx) {
			if u.Name() == models.OpWeight && !opts.SetWeight {
				continue
			}
			p := plannedOp{updater: u}
			for _, row := range sh.Rows {
				m, ok := matches[row.SKU]
				if !ok || !m.Has(b) {
					continue
				}
				desired := row.Desired(u.Name())
				if !hasValues(desired) {
					continue
				}
				p.requests = append(p.requests, models.UpdateRequest{
					Match:     m,
					Backend:   b,
					Operation: u.Name(),
					Desired:   desired,
				})
			}
			if len(p.requests) > 0 {
				plans[b] = append(plans[b], p)
			}
		}
	}
	return plans, processed
}

func hasValues(m map[string]string) bool {
	for _, v := range m {
		if v != "" {
			return true
		}
	}
	return false
}

// upload copies the report files to the bucket. Failures are logged.
func (s *Service) upload(ctx context.Context, log *zap.Logger, runID string, files []string) []string {
	if err := storage.EnsureBucket(ctx, s.storage, s.bucket, ""); err != nil {
		log.Warn("Report upload skipped", zap.Error(err))
		return nil
	}

	var (
		mu       gosync.Mutex
		uploaded []string
		errs     []error
	)
	var g errgroup.Group
	g.SetLimit(4)
	for _, f := range files {
		object := path.Join(s.prefix, runID, filepath.Base(f))
		g.Go(func() error {
			err := storage.UploadFile(ctx, s.storage, s.bucket, object, f, contentType(f))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			uploaded = append(uploaded, object)
			return nil
		})
	}
	_ = g.Wait()
	sort.Strings(uploaded)

	if err := errors.Join(errs...); err != nil {
		log.Warn("Some reports failed to upload", zap.Error(err))
	}
	return uploaded
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".csv":
		return "text/csv"
	case ".md":
		return "text/markdown"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
