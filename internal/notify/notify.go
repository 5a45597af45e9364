// Package notify raises desktop notifications.
package notify

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Desktop sends notifications through the operating system. When disabled,
// Notify only logs.
type Desktop struct {
	enabled bool
	send    func(title, message string) error
	logger  *slog.Logger
}

func NewDesktop(enabled bool, logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Desktop{
		enabled: enabled,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		logger: logger,
	}
}

func (d *Desktop) Notify(title, message string) error {
	d.logger.Debug("notification", "title", title, "enabled", d.enabled)
	if !d.enabled {
		return nil
	}
	if err := d.send(title, message); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	return nil
}
