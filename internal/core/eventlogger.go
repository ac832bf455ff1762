package core

// Event types recorded by core services.
const (
	EventMatrixComputed = "matrix.computed"
	EventMatrixExported = "matrix.exported"
	EventDatasetImport  = "dataset.imported"
)

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}
