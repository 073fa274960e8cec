package sync

// Config holds the defaults of a synchronization run.
type Config struct {
	// Concurrency bounds the keys resolved at once.
	Concurrency int `mapstructure:"concurrency" default:"4" validate:"gte=1,lte=20"`
	// StaleHours is the cache staleness window.
	StaleHours int `mapstructure:"stale_hours" default:"24" validate:"gte=1"`
	// DuplicatePolicy applies to manufacturer SKU resolution.
	DuplicatePolicy string `mapstructure:"duplicate_policy" default:"first_found" validate:"oneof=first_found skip error"`
	// CredentialsDir holds the <backend>_tokens.json files.
	CredentialsDir string `mapstructure:"credentials_dir" default:".credentials"`
	// OutDir receives the run reports.
	OutDir string `mapstructure:"out_dir" default:"out"`
	// UploadReports copies reports to the storage bucket.
	UploadReports bool `mapstructure:"upload_reports" default:"false"`
	// TimeoutMinutes is the run cutoff, zero for none.
	TimeoutMinutes int `mapstructure:"timeout_minutes" default:"0" validate:"gte=0"`
}
