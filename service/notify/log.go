package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes messages to a structured logger instead of sending them
type LogNotifier struct {
	Logger *slog.Logger
}

// Send implements Notifier
func (n *LogNotifier) Send(ctx context.Context, recipient string, template string, data map[string]string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := make([]any, 0, 2*len(data)+4)
	attrs = append(attrs, "recipient", recipient, "template", template)
	for k, v := range data {
		attrs = append(attrs, k, v)
	}
	logger.InfoContext(ctx, "notification", attrs...)
	return nil
}
