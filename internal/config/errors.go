package config

import "fmt"

// ConfigurationError indicates a missing or malformed rule or mapping
// file. It is fatal: the run aborts before any row is processed.
type ConfigurationError struct {
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration %s: %s", e.Path, e.Reason)
}
