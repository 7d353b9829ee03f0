package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and extraction errors
	ErrAPIRequest  = fmt.Errorf("API request failed")
	ErrDownload    = fmt.Errorf("content download failed")
	ErrSessionInit = fmt.Errorf("browser session initialization failed")

	// Record errors
	ErrInvalidRecord = fmt.Errorf("invalid record")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
