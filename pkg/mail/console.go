package mail

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleSender writes messages to the log instead of delivering them.
// Used in development and tests.
type ConsoleSender struct {
	logger *zap.Logger
}

func NewConsoleSender(logger *zap.Logger) *ConsoleSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("outgoing email",
		zap.String("to", msg.ToAddress),
		zap.String("subject", msg.Subject),
		zap.String("text_body", msg.TextBody),
	)
	return nil
}
