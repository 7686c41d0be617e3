package metrics

import (
	"context"
	"time"

	"github.com/rosterd/rosterd/core/events"
	coremetrics "github.com/rosterd/rosterd/core/metrics"
	"github.com/rosterd/rosterd/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// generation events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, ok := ev.(events.CoverageShortfallEvent); ok {
					if r, ok := sink.(coremetrics.ShortfallRecorder); ok {
						_ = r.RecordShortfall(coremetrics.ShortfallRecord{
							RunID:   e.RunID,
							Date:    e.Date,
							ShiftID: e.ShiftID,
							Missing: e.Missing,
							Time:    time.Now(),
						})
					}
				}
			}
		}
	}()
}
