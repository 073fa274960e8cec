package ecom

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"catalog-sync/core/models"
	"catalog-sync/core/update"

	"go.uber.org/zap"
)

// FieldImages is the desired-value key holding comma separated URLs.
const FieldImages = "images"

// ImageMode selects how desired images combine with existing ones.
type ImageMode string

const (
	ModeAppend  ImageMode = "append"
	ModeReplace ImageMode = "replace"
	ModeSkip    ImageMode = "skip"
)

// ParseImageMode validates a mode name. Empty means append.
func ParseImageMode(s string) (ImageMode, error) {
	switch m := ImageMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAppend, nil
	case ModeAppend, ModeReplace, ModeSkip:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown image mode %q", models.ErrValidation, s)
	}
}

// Image result notes.
const (
	NoteSkipped     = "skipped by mode"
	NoteNoValidURLs = "no valid image URLs"
	NoteAllExisting = "all images already exist"
)

var urlPattern = regexp.MustCompile(`(?i)^https?://.+`)

// ParseURLs splits a comma separated list, dropping empty entries.
func ParseURLs(s string) []string {
	var urls []string
	for _, part := range strings.Split(s, ",") {
		if u := strings.TrimSpace(part); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// ValidateURLs splits urls into http(s) URLs and rejected entries.
func ValidateURLs(urls []string) (valid, invalid []string) {
	for _, u := range urls {
		if urlPattern.MatchString(u) {
			valid = append(valid, u)
		} else {
			invalid = append(invalid, u)
		}
	}
	return valid, invalid
}

// Images attaches product images. Uploads are best effort: some failures
// still yield a successful result annotated with the failure count.
type Images struct {
	client *Client
	mode   ImageMode
	logger *zap.Logger
}

// NewImages creates the images updater.
func NewImages(client *Client, mode ImageMode, logger *zap.Logger) *Images {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mode == "" {
		mode = ModeAppend
	}
	return &Images{client: client, mode: mode, logger: logger}
}

func (u *Images) Backend() models.Backend { return models.BackendEcom }

func (u *Images) Name() models.Operation { return models.OpImages }

// Apply uploads the desired images according to the mode.
func (u *Images) Apply(ctx context.Context, req models.UpdateRequest, opts update.Options) models.UpdateResult {
	res := models.NewResult(req)
	res.Backend = models.BackendEcom
	res.Operation = models.OpImages
	var observe func(update.State)
	if opts.Observe != nil {
		observe = func(s update.State) { opts.Observe(req, s) }
	}
	track := update.NewTracker(observe)

	id, err := update.RecordID(req, models.BackendEcom)
	if err != nil {
		return update.Fail(track, res, update.StageValidate, err)
	}
	if u.mode == ModeSkip {
		return update.Succeed(track, res, nil, NoteSkipped)
	}

	valid, invalid := ValidateURLs(ParseURLs(req.Desired[FieldImages]))
	for _, bad := range invalid {
		u.logger.Warn("Dropping invalid image URL", zap.String("sku", res.SKU), zap.String("url", bad))
	}
	if len(valid) == 0 {
		return update.Succeed(track, res, nil, NoteNoValidURLs)
	}

	if opts.DryRun {
		preview := make(map[string]string, len(valid))
		for _, v := range valid {
			preview[v] = string(u.mode)
		}
		return update.Succeed(track, res, preview, update.NoteDryRun)
	}

	track.To(update.StateFetching)
	existing, err := u.client.Images(ctx, id)
	if err != nil {
		return update.Fail(track, res, update.StageFetch, err)
	}

	uploads := valid
	start := 1
	if u.mode == ModeAppend {
		start = len(existing) + 1
		if !opts.Force {
			uploads = newURLs(valid, existing)
			if len(uploads) == 0 {
				track.To(update.StateNoChange)
				return update.Succeed(track, res, nil, NoteAllExisting)
			}
		}
	}

	track.To(update.StateWriting)
	if u.mode == ModeReplace {
		for _, img := range existing {
			if err := u.client.DeleteImage(ctx, id, img.ID); err != nil {
				u.logger.Warn("Failed to delete image",
					zap.String("sku", res.SKU), zap.String("image_id", img.ID), zap.Error(err))
			}
		}
	}

	changes := make(map[string]string, len(uploads))
	var failed int
	var lastErr error
	for i, src := range uploads {
		order := start + i
		if err := u.client.AddImage(ctx, id, src, order); err != nil {
			failed++
			lastErr = err
			u.logger.Warn("Image upload failed", zap.String("sku", res.SKU), zap.String("url", src), zap.Error(err))
			continue
		}
		changes[src] = strconv.Itoa(order)
	}

	if failed == len(uploads) {
		return update.Fail(track, res, update.StageWrite,
			fmt.Errorf("all %d image uploads failed: %w", failed, lastErr))
	}
	res = update.Succeed(track, res, changes, "")
	if failed > 0 {
		res.Error = fmt.Sprintf("%d image uploads failed", failed)
	}
	return res
}

func newURLs(urls []string, existing []Image) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, img := range existing {
		seen[img.Src] = struct{}{}
	}
	var out []string
	for _, u := range urls {
		if _, ok := seen[u]; !ok {
			out = append(out, u)
		}
	}
	return out
}
