package logger

import (
	"context"
	"log/slog"

	"github.com/plannerhq/planner/core/sanitizer"
)

// MaskingHandler decorates a slog.Handler and masks PII in every record that
// passes through it: the message and all string-valued attributes, including
// those inside groups. Wrapping the root handler guarantees the masking rules
// hold for every emitter, not only request-aware code.
type MaskingHandler struct {
	inner slog.Handler
}

// NewMaskingHandler wraps the given handler with PII masking.
func NewMaskingHandler(inner slog.Handler) *MaskingHandler {
	return &MaskingHandler{inner: inner}
}

// Enabled implements slog.Handler.
func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler, emitting a masked copy of the record.
func (h *MaskingHandler) Handle(ctx context.Context, rec slog.Record) error {
	masked := slog.NewRecord(rec.Time, rec.Level, sanitizer.MaskPII(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(maskAttr(a))
		return true
	})
	return h.inner.Handle(ctx, masked)
}

// WithAttrs implements slog.Handler.
func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = maskAttr(a)
	}
	return &MaskingHandler{inner: h.inner.WithAttrs(maskedAttrs)}
}

// WithGroup implements slog.Handler.
func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{inner: h.inner.WithGroup(name)}
}

func maskAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, sanitizer.MaskPII(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		maskedGroup := make([]slog.Attr, len(group))
		for i, ga := range group {
			maskedGroup[i] = maskAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedGroup...)}
	case slog.KindLogValuer:
		return maskAttr(slog.Attr{Key: a.Key, Value: a.Value.Resolve()})
	default:
		return a
	}
}
