// Package control sends command frames to hardware modules.
package control

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/telelink-io/telelink/internal/wire"
)

// Sender writes outbound frames. The implementation fails the write
// synchronously when the connection is not in the connected state.
type Sender interface {
	Send(data []byte) error
}

// Dispatcher encodes and sends control frames. There is no queueing and
// no retry: a command issued while disconnected fails synchronously.
type Dispatcher struct {
	logger *slog.Logger
	sender Sender
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		logger: logger,
		sender: sender,
	}
}

// Send encodes a control frame and writes it to the socket. It returns
// connection.ErrNotConnected (wrapped) when the link is down.
func (d *Dispatcher) Send(moduleID, command string, value wire.Value) error {
	frame := wire.Control{
		Type:     wire.TypeControl,
		ModuleID: moduleID,
		Command:  command,
		Value:    value,
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode control frame: %w", err)
	}

	if err := d.sender.Send(data); err != nil {
		return fmt.Errorf("send control %s/%s: %w", moduleID, command, err)
	}

	d.logger.Debug("control sent",
		"module", moduleID,
		"command", command,
		"value", value.Display(),
	)
	return nil
}
