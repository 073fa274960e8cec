// Package config loads the catalog-sync configuration.
//
// Values come from environment variables, optionally seeded from a .env file.
// Every section declares its keys with `mapstructure` tags and its defaults
// with `default` tags; LoadConfig registers them all with Viper and then
// checks the `validate` tags.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and resolve request cap
//   - Log: level and encoding
//   - Retail, Ecom: base URL, credentials, request spacing and retry policy
//   - Sync: concurrency, cache staleness, duplicate policy, output directory
//   - Cache: identity cache driver (file, s3, sql, redis)
//   - Storage, Database, Redis: clients for the non-file cache drivers
//
// Nested keys map to upper-case variables joined by underscores, so
// retail.rate_limit_ms is read from RETAIL_RATE_LIMIT_MS.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.Concurrency)
package config
