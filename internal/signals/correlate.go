package signals

import (
	"context"
	"fmt"
	"sync"

	"fitgap-client/internal/shared/metrics"
	"fitgap-client/internal/shared/telemetry"
)

// Lookup fetches the latest signal of one subject. ok=false means none yet.
type Lookup func(ctx context.Context, subjectID string) (signal string, ok bool, err error)

// Map associates subject ids with their latest signal. Absent ids have none.
type Map map[string]Signal

// Record stores raw under id if it parses, replacing any prior value.
func (m Map) Record(id, raw string) bool {
	s, ok := Parse(raw)
	if !ok || id == "" {
		return false
	}
	m[id] = s
	return true
}

// Get returns the signal of id, if any.
func (m Map) Get(id string) (Signal, bool) {
	s, ok := m[id]
	return s, ok
}

// Correlate looks up every id concurrently and waits for all of them to
// settle. Failed, empty or unrecognised results contribute no entry; nothing
// is ever returned as an error. Duplicate ids are looked up once.
func Correlate(ctx context.Context, ids []string, lookup Lookup) Map {
	out := make(Map, len(ids))
	seen := make(map[string]struct{}, len(ids))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			raw, ok, err := safeLookup(ctx, lookup, id)
			switch {
			case err != nil:
				metrics.IncSignalLookup("failed")
				telemetry.Info("signals.lookup_failed", map[string]any{"subject_id": id, "error": err})
				return
			case !ok:
				metrics.IncSignalLookup("absent")
				return
			}
			mu.Lock()
			recorded := out.Record(id, raw)
			mu.Unlock()
			if recorded {
				metrics.IncSignalLookup("hit")
			} else {
				metrics.IncSignalLookup("absent")
			}
		}(id)
	}
	wg.Wait()
	return out
}

// One resolves a single subject, such as the résumé on the account page.
func One(ctx context.Context, id string, lookup Lookup) (Signal, bool) {
	return Correlate(ctx, []string{id}, lookup).Get(id)
}

func safeLookup(ctx context.Context, lookup Lookup, id string) (raw string, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lookup panic: %v", rec)
		}
	}()
	return lookup(ctx, id)
}
