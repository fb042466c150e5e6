package core

import "fmt"

// ConfigError represents a missing or malformed required input. Fatal for
// the current command; nothing is mutated.
type ConfigError struct {
	Message string
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string) *ConfigError {
	return &ConfigError{Message: message}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return e.Message
}

// PartialSyncError reports a sync pass that completed but left some
// descriptors unsynced. Successfully synced entries are already persisted.
type PartialSyncError struct {
	Created int
	Skipped int
	Failed  int
}

func NewPartialSyncError(result SyncResult) *PartialSyncError {
	return &PartialSyncError{Created: result.Created, Skipped: result.Skipped, Failed: result.Failed}
}

func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("sync finished with failures: %d created, %d skipped, %d failed", e.Created, e.Skipped, e.Failed)
}
