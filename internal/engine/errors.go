package engine

import "fmt"

// ConfigError is returned by New when the engine cannot be
// constructed for the requested sample rate or buffer sizes.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("engine: config: %s", e.Reason)
}

// ProcessError is returned by Process for a per-call anomaly that
// does not invalidate the engine itself - a mismatched buffer length,
// for instance. The caller may retry on the next callback.
type ProcessError struct {
	Reason string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("engine: process: %s", e.Reason)
}
