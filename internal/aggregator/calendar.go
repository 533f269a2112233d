package aggregator

import (
	"context"
	"sort"
	"time"

	"marketfeed/internal/models"
	"marketfeed/internal/store"
	"marketfeed/internal/upstream"
)

// Calendar fetches both calendar sources concurrently, merges and sorts
// the events, and optionally translates their names. One failing source
// never drops the other's events; only a total failure falls back to
// the cached list.
func (s *Service) Calendar(ctx context.Context) []models.CalendarEvent {
	start := time.Now()
	defer func() {
		s.deps.Metrics.RecordAggregate("calendar", time.Since(start))
	}()

	var macro, crypto upstream.Result[[]models.CalendarEvent]

	done := make(chan struct{})
	go func() {
		defer close(done)
		crypto = timed(s.deps.Metrics, "crypto_events", func() upstream.Result[[]models.CalendarEvent] {
			return s.deps.CryptoEvents.FetchEvents(ctx)
		})
	}()
	macro = timed(s.deps.Metrics, "macro_events", func() upstream.Result[[]models.CalendarEvent] {
		return s.deps.MacroEvents.FetchEvents(ctx)
	})
	<-done

	if !macro.OK() && !crypto.OK() {
		s.logger.Warn("calendar_degraded", "macro_error", macro.Err, "crypto_error", crypto.Err)
		return loadCached(ctx, s, store.KindCalendar, []models.CalendarEvent{})
	}

	merged := make([]models.CalendarEvent, 0, len(macro.Value)+len(crypto.Value))
	merged = append(merged, macro.Value...)
	merged = append(merged, crypto.Value...)

	// Deterministic order regardless of which source settled first.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SortKey() < merged[j].SortKey()
	})

	s.translateNames(ctx, merged)

	s.save(ctx, store.KindCalendar, merged)
	s.logger.Info("calendar_merged",
		"macro_count", len(macro.Value),
		"crypto_count", len(crypto.Value),
	)
	return merged
}

// translateNames rewrites event names through the translation gateway.
// A failed translation leaves every original in place; it never drops
// events.
func (s *Service) translateNames(ctx context.Context, events []models.CalendarEvent) {
	if s.deps.LLM == nil || !s.deps.LLM.Configured() || s.deps.TranslateLang == "" {
		return
	}

	seen := make(map[string]bool, len(events))
	names := make([]string, 0, len(events))
	for _, e := range events {
		if !seen[e.EventName] {
			seen[e.EventName] = true
			names = append(names, e.EventName)
		}
	}
	if len(names) == 0 {
		return
	}

	lookup, err := s.deps.LLM.TranslateBatch(ctx, names, s.deps.TranslateLang)
	if err != nil {
		s.logger.Warn("translation_failed", "names", len(names), "error", err)
		return
	}

	for i := range events {
		if tr, ok := lookup[events[i].EventName]; ok {
			events[i].EventName = tr
		}
	}
}
