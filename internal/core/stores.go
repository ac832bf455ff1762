package core

import (
	"context"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// DataSource supplies the source records the engine computes from.
// This interface is defined locally in core to avoid importing storage.
type DataSource interface {
	Load(ctx context.Context) (*models.Dataset, error)
}

// Logger is the structured logger core services write to. It is satisfied
// by *log.Logger from charmbracelet/log.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Warn(any, ...any)  {}
