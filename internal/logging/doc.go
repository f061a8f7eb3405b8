// Package logging provides a simple leveled logging interface for the
// filedex application.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//
// The level is read once from the environment: DEBUG=1 (or true/yes/on)
// enables debug logging, otherwise LOG_LEVEL selects the level and
// defaults to info.
package logging
