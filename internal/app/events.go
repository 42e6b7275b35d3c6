package app

import (
	"context"
	"time"

	"github.com/mselser95/auctionflow/internal/storage"
	"github.com/mselser95/auctionflow/pkg/eventfeed"
	"github.com/mselser95/auctionflow/pkg/types"
	"go.uber.org/zap"
)

// eventRecorder fans out committed swap events to storage and the live
// feed. Pairs call it synchronously, so persistence runs on a bounded
// background queue to keep the swap path fast.
type eventRecorder struct {
	storage storage.Storage
	feed    *eventfeed.Hub
	logger  *zap.Logger
	queue   chan *types.SwapEvent
	done    chan struct{}
}

func newEventRecorder(store storage.Storage, feed *eventfeed.Hub, logger *zap.Logger) *eventRecorder {
	r := &eventRecorder{
		storage: store,
		feed:    feed,
		logger:  logger,
		queue:   make(chan *types.SwapEvent, 256),
		done:    make(chan struct{}),
	}

	go r.persistLoop()

	return r
}

// SwapExecuted delivers the event to the feed immediately and enqueues it
// for persistence.
func (r *eventRecorder) SwapExecuted(event *types.SwapEvent) {
	if r.feed != nil {
		r.feed.SwapExecuted(event)
	}

	select {
	case r.queue <- event:
	default:
		r.logger.Warn("event-queue-full-dropping",
			zap.String("event-id", event.ID),
			zap.String("pair-id", event.PairID))
	}
}

func (r *eventRecorder) persistLoop() {
	defer close(r.done)

	for event := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := r.storage.StoreSwap(ctx, event)
		cancel()

		if err != nil {
			r.logger.Error("swap-event-store-failed",
				zap.String("event-id", event.ID),
				zap.Error(err))
		}
	}
}

// Close drains the queue and stops the persistence loop.
func (r *eventRecorder) Close() error {
	close(r.queue)
	<-r.done
	return nil
}
