package service

import (
	"context"
	"fmt"

	"medreminder/internal/pkg/logger"
)

type logAlerter struct {
	log logger.Logger
}

// NewLogAlerter returns an Alerter that writes alerts to the log. It is used
// when no LINE channel is configured.
func NewLogAlerter(log logger.Logger) Alerter {
	return &logAlerter{log: log}
}

func (a *logAlerter) Alert(ctx context.Context, title, message string) {
	a.log.Warn(fmt.Sprintf("ALERT: %s: %s", title, message))
}
