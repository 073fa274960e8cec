package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-sync/core/models"
	"catalog-sync/core/resolve"
	"catalog-sync/feature/ecom"
	"catalog-sync/feature/sheet"
	syncsvc "catalog-sync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize a spreadsheet export into the retail and eCom backends",
	Long: `Reads a CSV export, resolves every SKU to its retail item and eCom product
(cache first), then updates custom fields, weight, descriptions and images on
records that already exist. Results are written to the output directory as a
markdown report, a JSON summary and a failures CSV.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	input, _ := flags.GetString("input")
	limit, _ := flags.GetInt("limit")
	dryRun, _ := flags.GetBool("dry-run")
	force, _ := flags.GetBool("force")
	target, _ := flags.GetString("update")
	setWeight, _ := flags.GetBool("set-weight")
	images, _ := flags.GetString("images")
	concurrency, _ := flags.GetInt("concurrency")
	byManufacturer, _ := flags.GetBool("use-manufacturer-sku")
	duplicates, _ := flags.GetString("duplicate-strategy")
	outDir, _ := flags.GetString("out-dir")
	upload, _ := flags.GetBool("upload")

	// 1. Load Configuration and Logger
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if flags.Changed("images") {
		a.cfg.Ecom.ImageMode = images
	}
	if !flags.Changed("concurrency") {
		concurrency = a.cfg.Sync.Concurrency
	}
	if !flags.Changed("duplicate-strategy") {
		duplicates = a.cfg.Sync.DuplicatePolicy
	}
	if !flags.Changed("out-dir") {
		outDir = a.cfg.Sync.OutDir
	}
	upload = upload || a.cfg.Sync.UploadReports

	if concurrency < 1 || concurrency > 20 {
		return fmt.Errorf("%w: concurrency must be between 1 and 20", models.ErrValidation)
	}
	tgt, err := syncsvc.ParseTarget(target)
	if err != nil {
		return err
	}
	policy, err := resolve.ParseDuplicatePolicy(duplicates)
	if err != nil {
		return err
	}
	if _, err := ecom.ParseImageMode(a.cfg.Ecom.ImageMode); err != nil {
		return err
	}

	// 2. Read Input
	sh, err := sheet.ReadFile(input, limit)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	a.log.Info("Input loaded",
		zap.String("file", input),
		zap.Int("rows", sh.Total),
		zap.Int("missing_sku", len(sh.Skipped)),
		zap.Strings("columns", sh.Present),
	)

	// 3. Run Context
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if a.cfg.Sync.TimeoutMinutes > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(a.cfg.Sync.TimeoutMinutes)*time.Minute)
		defer cancel()
	}

	// 4. Initialize Cache and Backends
	resolver, err := a.openResolver(ctx, concurrency)
	if err != nil {
		return err
	}

	var opts []syncsvc.Option
	if rb := a.retailBackend(); rb != nil {
		opts = append(opts, syncsvc.WithBackend(models.BackendRetail, rb))
	}
	if eb := a.ecomBackend(); eb != nil {
		opts = append(opts, syncsvc.WithBackend(models.BackendEcom, eb))
	}
	if upload {
		client, err := a.storageClient()
		if err != nil {
			return err
		}
		opts = append(opts, syncsvc.WithStorage(client, a.cfg.Storage.Bucket, a.cfg.Storage.ReportPrefix))
	}

	// 5. Run
	svc := syncsvc.NewService(resolver, a.log, opts...)
	res, err := svc.Run(ctx, sh, syncsvc.Options{
		Target:            tgt,
		Force:             force,
		DryRun:            dryRun,
		SetWeight:         setWeight,
		Concurrency:       concurrency,
		ByManufacturerSKU: byManufacturer,
		Policy:            policy,
		OutDir:            outDir,
		Upload:            upload,
	})
	if err != nil {
		return err
	}

	s := res.Summary
	a.log.Info("Run complete",
		zap.String("run_id", res.RunID),
		zap.Int("processed", s.ProcessedRows),
		zap.Int("skipped", s.SkippedRows),
		zap.Int("retail_updates", s.Retail.Succeeded),
		zap.Int("ecom_updates", s.Ecom.Succeeded),
		zap.Int("errors", s.Errors),
		zap.Strings("files", res.Files),
		zap.Strings("uploaded", res.Uploaded),
	)
	return nil
}

func init() {
	f := syncCmd.Flags()
	f.StringP("input", "i", "", "CSV export to synchronize")
	f.Int("limit", 0, "Process at most this many rows (0 for all)")
	f.Bool("dry-run", false, "Report what would change without writing")
	f.Bool("force", false, "Write every desired field without comparing")
	f.String("update", string(syncsvc.TargetAll), "Backends to update: all, retail or ecom")
	f.Bool("set-weight", false, "Also update retail weights")
	f.String("images", "append", "Image mode: append, replace or skip")
	f.Int("concurrency", 4, "Concurrent SKU resolutions (1-20)")
	f.Bool("use-manufacturer-sku", false, "Match on manufacturer SKU instead of SKU")
	f.String("duplicate-strategy", string(resolve.PolicyFirstFound), "Manufacturer SKU duplicates: first_found, skip or error")
	f.String("out-dir", "out", "Directory for the run reports")
	f.Bool("upload", false, "Upload the run reports to the storage bucket")
	_ = syncCmd.MarkFlagRequired("input")

	RootCmd.AddCommand(syncCmd)
}
