// Package observability provides the JSON Lines event log that records
// matrix computes, exports, and imports, and the runtime logger built on
// charmbracelet/log.
package observability
