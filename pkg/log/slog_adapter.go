package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes runtime events to an slog.Logger.
// Useful for development when you want to see subscription and timer
// activity in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.ConnectionID != "" {
		attrs = append(attrs, slog.String("conn_id", event.ConnectionID))
	}
	if event.Direction != DirectionUnspecified {
		attrs = append(attrs, slog.String("direction", event.Direction.String()))
	}
	if event.Topic != "" {
		attrs = append(attrs, slog.String("topic", event.Topic))
	}
	if event.PublisherURI != "" {
		attrs = append(attrs, slog.String("publisher_uri", event.PublisherURI))
	}
	if event.TimerHandle != nil {
		attrs = append(attrs, slog.Uint64("timer_handle", uint64(*event.TimerHandle)))
	}

	switch {
	case event.Link != nil:
		attrs = append(attrs,
			slog.String("transport", event.Link.Transport),
			slog.Uint64("bytes_received", event.Link.BytesReceived),
			slog.Uint64("messages_received", event.Link.MessagesReceived),
		)
	case event.Negotiation != nil:
		attrs = append(attrs,
			slog.String("attempt_id", event.Negotiation.AttemptID),
			slog.Bool("accepted", event.Negotiation.Accepted),
		)
		if event.Negotiation.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Negotiation.Reason))
		}
	case event.Overflow != nil:
		attrs = append(attrs,
			slog.Int("max_queue", event.Overflow.MaxQueue),
			slog.Uint64("total_dropped", event.Overflow.TotalDropped),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Timer != nil:
		attrs = append(attrs, slog.Int("missed_ticks", event.Timer.MissedTicks))
		if event.Timer.LastCallDuration > 0 {
			attrs = append(attrs, slog.Duration("last_call_duration", event.Timer.LastCallDuration))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "ros", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
