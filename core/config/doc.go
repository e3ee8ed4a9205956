// Package config provides configuration management for the IXP tracker.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live next to each field as `default:"..."` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Registry: base URL, API key and paging of the network registry
//   - Archive: URL template of the daily snapshot archive
//   - Lookup: ASN lookup provider selection
//   - Database: MySQL or SQLite connection details
//   - Storage: S3/MinIO credentials used to mirror archive dumps
//   - Server: port and API key of the stats API
//   - Metrics: textfile export path
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Registry.BaseURL)
package config
