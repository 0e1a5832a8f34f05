// Package logsink writes audit events as structured log lines.
package logsink

import (
	"context"
	"log/slog"
	"strings"

	audit "downloadgate/pkg/platform/audit"
)

// Sink implements audit.Sink on top of slog.
type Sink struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Sink {
	return &Sink{logger: logger}
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("category", string(event.Category)),
		slog.String("action", event.Action),
		slog.Time("timestamp", event.Timestamp),
		slog.String("reason", event.Reason),
		slog.String("request_id", event.RequestID),
		slog.String("record_id", event.RecordID),
		slog.String("purposes", strings.Join(event.Purposes, ",")),
		slog.String("affiliations", strings.Join(event.Affiliations, ",")),
		slog.String("lang", event.Lang),
		slog.String("plugin_version", event.PluginVersion),
		slog.String("browser", event.Client.Browser),
		slog.String("os", event.Client.OS),
		slog.Bool("bot", event.Client.Bot),
	)
	return nil
}
