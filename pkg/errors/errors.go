// Package errors defines the sentinel errors used across appgrid and small
// wrapping helpers. The query pipeline itself never produces errors; these
// cover the I/O edges (config, catalogs, stats, downloads).
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath  = fmt.Errorf("config file path cannot be empty")
	ErrConfigParse      = fmt.Errorf("failed to parse config")
	ErrConfigValidation = fmt.Errorf("invalid configuration")
	ErrConfigEncode     = fmt.Errorf("failed to encode config")
	ErrConfigWrite      = fmt.Errorf("failed to write config")

	// Download errors.
	ErrInvalidPath      = fmt.Errorf("invalid path")
	ErrDownloadFailed   = fmt.Errorf("download failed")
	ErrChecksumMismatch = fmt.Errorf("checksum mismatch")

	// Catalog errors.
	ErrCatalogParse    = fmt.Errorf("failed to parse catalog")
	ErrCatalogNotFound = fmt.Errorf("catalog not found")

	// Stats errors.
	ErrStatsDecode = fmt.Errorf("failed to decode stats data")

	// Cache errors.
	ErrCacheClean     = fmt.Errorf("failed to clean cache")
	ErrCacheInfo      = fmt.Errorf("failed to get cache info")
	ErrCacheDirectory = fmt.Errorf("cache directory cannot be empty")

	// Curation errors.
	ErrScriptLoad      = fmt.Errorf("failed to load curation script")
	ErrScriptExecution = fmt.Errorf("error executing curation script")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
