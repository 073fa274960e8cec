package update

import (
	"context"
	"errors"
	"fmt"

	"catalog-sync/core/apiclient"
	"catalog-sync/core/models"

	"go.uber.org/zap"
)

// Result notes.
const (
	NoteUpToDate = "already up to date"
	NoteDryRun   = "dry run"
	NoteNothing  = "nothing to update"
)

// Failure stages.
const (
	StageValidate = "validate"
	StageFetch    = "fetch"
	StageWrite    = "write"
)

// Options are the per-run update flags.
type Options struct {
	// Force skips the read-compare step and writes every desired field.
	Force bool
	// DryRun makes no network call and reports the full desired set.
	DryRun bool
	// Observe receives every state transition. Optional.
	Observe func(req models.UpdateRequest, s State)
}

func (o Options) observer(req models.UpdateRequest) func(State) {
	if o.Observe == nil {
		return nil
	}
	return func(s State) { o.Observe(req, s) }
}

// Operation is one field group on one backend.
type Operation interface {
	// Backend is the backend the operation writes to.
	Backend() models.Backend
	// Name is the field group.
	Name() models.Operation
	// Validate normalizes the desired values without any network call.
	Validate(req models.UpdateRequest) (map[string]string, error)
	// Current reads the current values of the desired fields.
	Current(ctx context.Context, id string, desired map[string]string) (map[string]string, error)
	// Write applies changes to the record.
	Write(ctx context.Context, id string, changes map[string]string) error
	// Comparers returns per-field comparison rules.
	Comparers() Comparers
}

// Updater turns one request into exactly one result.
type Updater interface {
	Backend() models.Backend
	Name() models.Operation
	Apply(ctx context.Context, req models.UpdateRequest, opts Options) models.UpdateResult
}

// FieldUpdater runs an Operation through read-compare-write.
type FieldUpdater struct {
	op     Operation
	logger *zap.Logger
}

// NewFieldUpdater wraps op.
func NewFieldUpdater(op Operation, logger *zap.Logger) *FieldUpdater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FieldUpdater{op: op, logger: logger}
}

func (u *FieldUpdater) Backend() models.Backend { return u.op.Backend() }

func (u *FieldUpdater) Name() models.Operation { return u.op.Name() }

// Apply performs one update request.
func (u *FieldUpdater) Apply(ctx context.Context, req models.UpdateRequest, opts Options) models.UpdateResult {
	res := models.NewResult(req)
	res.Backend = u.op.Backend()
	res.Operation = u.op.Name()
	track := NewTracker(opts.observer(req))

	id, err := RecordID(req, u.op.Backend())
	if err != nil {
		return Fail(track, res, StageValidate, err)
	}

	desired, err := u.op.Validate(req)
	if err != nil {
		return Fail(track, res, StageValidate, err)
	}
	if len(desired) == 0 {
		return Succeed(track, res, nil, NoteNothing)
	}

	if opts.DryRun {
		return Succeed(track, res, desired, NoteDryRun)
	}

	changes := desired
	if !opts.Force {
		track.To(StateFetching)
		current, err := u.op.Current(ctx, id, desired)
		if err != nil {
			return Fail(track, res, StageFetch, err)
		}
		changes = ComputeDelta(current, desired, u.op.Comparers())
		if len(changes) == 0 {
			track.To(StateNoChange)
			return Succeed(track, res, nil, NoteUpToDate)
		}
	}

	track.To(StateWriting)
	if err := u.op.Write(ctx, id, changes); err != nil {
		return Fail(track, res, StageWrite, err)
	}

	u.logger.Debug("Record updated",
		zap.String("sku", res.SKU),
		zap.String("backend", string(res.Backend)),
		zap.String("operation", string(res.Operation)),
		zap.Int("fields", len(changes)),
	)
	return Succeed(track, res, changes, "")
}

// RecordID returns the backend record ID or a precondition error.
func RecordID(req models.UpdateRequest, b models.Backend) (string, error) {
	id := req.Match.ID(b)
	if id == "" {
		return "", fmt.Errorf("%w %s", models.ErrMissingID, b)
	}
	return id, nil
}

// Succeed finalizes a successful result.
func Succeed(track *Tracker, res models.UpdateResult, changes map[string]string, note string) models.UpdateResult {
	track.To(StateSuccess)
	res.Success = true
	res.Note = note
	res.Changes = map[string]string{}
	for k, v := range changes {
		res.Changes[k] = v
	}
	return res
}

// Fail finalizes a failed result with a stage and a readable error.
func Fail(track *Tracker, res models.UpdateResult, stage string, err error) models.UpdateResult {
	track.To(StateFailed)
	res.Success = false
	res.Stage = stage
	res.Error = Describe(err)
	res.Changes = map[string]string{}
	return res
}

// Describe renders err for reports, adding a hint for credential failures.
func Describe(err error) string {
	if errors.Is(err, apiclient.ErrAuthentication) {
		return "re-authenticate: " + err.Error()
	}
	return err.Error()
}

// ApplyAll runs every request through u in order. Requests left after ctx is
// cancelled still get a failed result.
func ApplyAll(ctx context.Context, u Updater, reqs []models.UpdateRequest, opts Options) []models.UpdateResult {
	results := make([]models.UpdateResult, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			res := models.NewResult(req)
			res.Backend = u.Backend()
			res.Operation = u.Name()
			results = append(results, Fail(NewTracker(nil), res, StageWrite, err))
			continue
		}
		results = append(results, u.Apply(ctx, req, opts))
	}
	return results
}
