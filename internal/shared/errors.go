package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrNoMigrations  = fmt.Errorf("no migrations to rollback")

	// Catalog and session errors
	ErrValidationFailed     = fmt.Errorf("validation failed")
	ErrAuthenticationFailed = fmt.Errorf("authentication failed")
	ErrUnauthenticated      = fmt.Errorf("not authenticated")
	ErrNotFound             = fmt.Errorf("not found")
	ErrOperationInProgress  = fmt.Errorf("operation already in progress")
	ErrStorageUnavailable   = fmt.Errorf("storage unavailable")
	ErrServerError          = fmt.Errorf("server error")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
