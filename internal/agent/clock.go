package agent

import "time"

// Clock supplies the current moment for recency and cooldown math.
// Injected so evaluation stays deterministic under test.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
