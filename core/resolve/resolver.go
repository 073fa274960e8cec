package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"catalog-sync/core/cachestore"
	"catalog-sync/core/models"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the worker count when none is configured.
const DefaultConcurrency = 4

// DefaultStaleAfter is the cache staleness window.
const DefaultStaleAfter = 24 * time.Hour

// Options tunes a Resolver.
type Options struct {
	// Concurrency bounds the number of keys resolved at once.
	Concurrency int
	// StaleAfter is the maximum age of a cached match.
	StaleAfter time.Duration
	// Clock returns the current time.
	Clock func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = DefaultStaleAfter
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Request is one resolution batch.
type Request struct {
	Keys []string

	// Retail and Ecom are nil when the backend has no credentials.
	Retail Lookup
	Ecom   Lookup

	// Concurrency overrides Options.Concurrency when positive.
	Concurrency int

	// ByManufacturerSKU switches to manufacturer-key lookups with Policy.
	ByManufacturerSKU bool
	Policy            DuplicatePolicy
}

func (r Request) lookups() []Lookup {
	var out []Lookup
	if r.Retail != nil {
		out = append(out, r.Retail)
	}
	if r.Ecom != nil {
		out = append(out, r.Ecom)
	}
	return out
}

// Batch is the outcome of one Resolve call.
type Batch struct {
	// Matches holds one entry per distinct non-empty input key that was served.
	Matches map[string]models.Match
	// Failed holds the lookup error of keys whose resolution failed.
	Failed map[string]error
	// Warnings lists non-fatal notes such as skipped duplicates.
	Warnings []string
	// CacheHits counts keys answered from the cache.
	CacheHits int
	// Looked counts keys that went to the network.
	Looked int
}

// Resolver resolves keys cache-first and owns the in-memory cache.
// Batches are serialized; a Resolver is safe for concurrent use.
type Resolver struct {
	mu      sync.Mutex
	store   cachestore.Store
	logger  *zap.Logger
	opts    Options
	entries map[string]models.Match
	dirty   bool
}

// New loads the cache once. A malformed document is logged and ignored.
func New(ctx context.Context, store cachestore.Store, logger *zap.Logger, opts Options) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := store.Load(ctx)
	switch {
	case errors.Is(err, cachestore.ErrMalformed):
		logger.Warn("Ignoring unreadable identity cache",
			zap.String("location", store.Location()),
			zap.Error(err),
		)
		entries = map[string]models.Match{}
	case err != nil:
		return nil, fmt.Errorf("failed to load identity cache: %w", err)
	}
	if entries == nil {
		entries = map[string]models.Match{}
	}

	logger.Debug("Identity cache loaded",
		zap.String("location", store.Location()),
		zap.Int("entries", len(entries)),
	)

	return &Resolver{
		store:   store,
		logger:  logger,
		opts:    opts.withDefaults(),
		entries: entries,
	}, nil
}

type pendingKey struct {
	key    string
	prev   models.Match
	cached bool
}

type outcome struct {
	started   bool
	match     models.Match
	cacheable bool
	err       error
	dup       *DuplicateKeyError
	warnings  []string
}

// Resolve maps req.Keys to matches. Per-key failures never abort the batch;
// only a duplicate under PolicyError does, and then nothing is cached.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ByManufacturerSKU && req.Policy == "" {
		req.Policy = PolicyFirstFound
	}

	batch := &Batch{
		Matches: make(map[string]models.Match, len(req.Keys)),
		Failed:  map[string]error{},
	}

	now := r.opts.Clock()
	var pending []pendingKey
	seen := make(map[string]struct{}, len(req.Keys))
	for _, key := range req.Keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		prev, ok := r.entries[key]
		if ok && !prev.IsStale(now, r.opts.StaleAfter) && checkedAll(prev, req) {
			batch.Matches[key] = prev
			batch.CacheHits++
			continue
		}
		pending = append(pending, pendingKey{key: key, prev: prev, cached: ok})
	}

	if len(pending) == 0 {
		return batch, nil
	}

	concurrency := req.Concurrency
	if concurrency <= 0 {
		concurrency = r.opts.Concurrency
	}

	r.logger.Info("Resolving keys",
		zap.Int("pending", len(pending)),
		zap.Int("cached", batch.CacheHits),
		zap.Int("concurrency", concurrency),
		zap.Bool("manufacturer_sku", req.ByManufacturerSKU),
	)

	outcomes := make([]outcome, len(pending))
	runErr := r.fanOut(ctx, req, pending, outcomes, concurrency)

	// Duplicate under PolicyError: report the first one in input order and
	// leave the cache untouched.
	for _, o := range outcomes {
		if o.dup != nil {
			r.logger.Error("Aborting resolution batch on duplicate key",
				zap.String("key", o.dup.Key),
				zap.String("backend", string(o.dup.Backend)),
				zap.Strings("candidates", o.dup.Candidates),
			)
			return nil, o.dup
		}
	}

	for i, o := range outcomes {
		if !o.started {
			continue
		}
		key := pending[i].key
		batch.Looked++
		batch.Matches[key] = o.match
		batch.Warnings = append(batch.Warnings, o.warnings...)

		if o.err != nil {
			batch.Failed[key] = o.err
			r.logger.Error("Key resolution failed", zap.String("key", key), zap.Error(o.err))
			continue
		}
		if o.cacheable {
			r.entries[key] = o.match
			r.dirty = true
		}
	}

	if err := r.saveLocked(context.WithoutCancel(ctx)); err != nil {
		r.logger.Warn("Failed to flush identity cache", zap.Error(err))
		batch.Warnings = append(batch.Warnings, err.Error())
	}

	return batch, runErr
}

// fanOut runs one worker per pending key, at most concurrency at a time.
// It returns the context error when cancellation stopped new keys.
func (r *Resolver) fanOut(ctx context.Context, req Request, pending []pendingKey, outcomes []outcome, concurrency int) error {
	sem := semaphore.NewWeighted(int64(concurrency))
	worker := workerContext(ctx)

	var wg sync.WaitGroup
	var aborted atomic.Bool
	var runErr error

	for i, p := range pending {
		if aborted.Load() {
			break
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			runErr = err
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			o := r.resolveKey(worker, req, p)
			o.started = true
			outcomes[i] = o
			if o.dup != nil {
				aborted.Store(true)
			}
		}()
	}

	wg.Wait()
	return runErr
}

// stopContext never closes Done, so a backend call already on the wire
// runs to completion, but Err reports the parent's cancellation so a lookup
// stops before issuing its next call.
type stopContext struct {
	context.Context
	parent context.Context
}

func (c stopContext) Err() error {
	return c.parent.Err()
}

func workerContext(parent context.Context) context.Context {
	return stopContext{Context: context.WithoutCancel(parent), parent: parent}
}

type backendResult struct {
	backend models.Backend
	id      string
	err     error
	dup     *DuplicateKeyError
	skipped bool
	warning string
}

// resolveKey queries every supplied backend concurrently for one key.
func (r *Resolver) resolveKey(ctx context.Context, req Request, p pendingKey) outcome {
	lookups := req.lookups()
	results := make([]backendResult, len(lookups))

	var wg sync.WaitGroup
	for i, l := range lookups {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.lookupBackend(ctx, l, p.key, req)
		}()
	}
	wg.Wait()

	o := outcome{cacheable: len(lookups) > 0}
	match := models.Match{SKU: p.key, LastResolved: r.opts.Clock()}

	// Backends without credentials keep whatever the cache knew, and stay
	// unchecked when they never were.
	for _, b := range models.Backends {
		if supplied(req, b) {
			continue
		}
		if p.cached && p.prev.Checked(b) {
			match = match.WithID(b, p.prev.ID(b))
			continue
		}
		match.Unchecked = append(match.Unchecked, b)
	}

	var errs []error
	for _, res := range results {
		if res.warning != "" {
			o.warnings = append(o.warnings, res.warning)
		}
		switch {
		case res.dup != nil:
			o.dup = res.dup
		case res.err != nil:
			errs = append(errs, fmt.Errorf("%s lookup: %w", res.backend, res.err))
		case res.skipped:
			o.cacheable = false
		default:
			match = match.WithID(res.backend, res.id)
		}
	}

	if len(errs) > 0 {
		o.err = errors.Join(errs...)
		o.cacheable = false
		match = models.Match{SKU: p.key, LastResolved: match.LastResolved}
	}
	o.match = match
	return o
}

func (r *Resolver) lookupBackend(ctx context.Context, l Lookup, key string, req Request) backendResult {
	res := backendResult{backend: l.Backend()}

	if !req.ByManufacturerSKU {
		res.id, res.err = l.FindBySKU(ctx, key)
		return res
	}

	ids, err := l.FindByManufacturerSKU(ctx, key)
	if err != nil {
		res.err = err
		return res
	}

	switch len(ids) {
	case 0:
		return res
	case 1:
		res.id = ids[0]
		return res
	}

	dup := &DuplicateKeyError{Key: key, Backend: res.backend, Candidates: ids}
	switch req.Policy {
	case PolicySkip:
		res.skipped = true
		res.warning = fmt.Sprintf("%s: skipped, %d %s records share this manufacturer SKU", key, len(ids), res.backend)
	case PolicyError:
		res.dup = dup
	default:
		res.id = ids[0]
		res.warning = fmt.Sprintf("%s: %d %s records share this manufacturer SKU, using %s", key, len(ids), res.backend, ids[0])
	}
	return res
}

// checkedAll reports whether every backend in req was queried for m.
func checkedAll(m models.Match, req Request) bool {
	for _, b := range models.Backends {
		if supplied(req, b) && !m.Checked(b) {
			return false
		}
	}
	return true
}

func supplied(req Request, b models.Backend) bool {
	switch b {
	case models.BackendRetail:
		return req.Retail != nil
	case models.BackendEcom:
		return req.Ecom != nil
	}
	return false
}

// Get returns the cached match for key regardless of age.
func (r *Resolver) Get(key string) (models.Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.entries[key]
	return m, ok
}

// Stats summarizes the cache.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ComputeStats(r.entries)
}

// Len returns the number of cached entries.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Location describes the backing store.
func (r *Resolver) Location() string {
	return r.store.Location()
}

// Save flushes the cache when it has unsaved changes.
func (r *Resolver) Save(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(ctx)
}

// Close flushes pending changes.
func (r *Resolver) Close(ctx context.Context) error {
	return r.Save(ctx)
}

// Clear drops every entry and removes the persisted document.
func (r *Resolver) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Clear(ctx); err != nil {
		return err
	}
	r.entries = map[string]models.Match{}
	r.dirty = false
	r.logger.Info("Identity cache cleared", zap.String("location", r.store.Location()))
	return nil
}

func (r *Resolver) saveLocked(ctx context.Context) error {
	if !r.dirty {
		return nil
	}
	if err := r.store.Save(ctx, r.entries); err != nil {
		return fmt.Errorf("failed to save identity cache: %w", err)
	}
	r.dirty = false
	r.logger.Debug("Identity cache saved",
		zap.String("location", r.store.Location()),
		zap.Int("entries", len(r.entries)),
	)
	return nil
}
