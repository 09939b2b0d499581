package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ConsoleSender prints alerts to stdout. Default channel for local runs.
type ConsoleSender struct {
	logger *zap.Logger
}

// NewConsoleSender creates a new console sender.
func NewConsoleSender(logger *zap.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

// Send prints the rendered alert.
func (c *ConsoleSender) Send(ctx context.Context, alert Alert) error {
	fmt.Println()
	fmt.Println(renderSubject(alert))
	fmt.Println(renderBody(alert))
	return nil
}
