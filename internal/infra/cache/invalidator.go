package cache

import (
	"context"
	"log/slog"

	"parking-lot-manager/internal/domain/event"
	"parking-lot-manager/internal/usecase/shared"
)

const (
	PrefixCatalog   = "catalog:lots"
	PrefixAnalytics = "analytics"
	PrefixAdvisory  = "advisory"
	PrefixReport    = "report"
)

var sharedPatterns = []string{"*lots*", "*analytics*"}

// Invalidator drops cached reads affected by a committed change.
type Invalidator struct {
	index shared.CacheIndex
}

func NewInvalidator(index shared.CacheIndex) *Invalidator {
	return &Invalidator{index: index}
}

func (i *Invalidator) Handle(ctx context.Context, e event.Event) {
	if !e.Type.Invalidates() {
		return
	}
	for _, p := range Patterns(e) {
		n, err := i.index.Invalidate(ctx, p)
		if err != nil {
			slog.Warn("cache invalidation failed", "pattern", p, "event", e.Type.String(), "error", err.Error())
			continue
		}
		if n > 0 {
			slog.Debug("cache invalidated", "pattern", p, "keys", n, "event", e.Type.String())
		}
	}
}

// Patterns lists the key globs an event invalidates.
func Patterns(e event.Event) []string {
	if !e.Type.Invalidates() {
		return nil
	}
	out := append([]string(nil), sharedPatterns...)
	if e.UserID != 0 {
		out = append(out, shared.UserCachePrefix(e.UserID)+":*")
	}
	return out
}
