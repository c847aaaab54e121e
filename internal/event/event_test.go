package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/event"
	"github.com/stretchr/testify/assert"
)

func Test_Dispatch_DeliversToRegisteredChannels(t *testing.T) {
	t.Parallel()
	bus := event.New()

	eventChannel := make(event.HandlerChannel, 4)
	bus.RegisterHandlerChannel(eventChannel, event.DownloadProgressEvent, event.DownloadCompleteEvent)

	id := uuid.New()
	bus.Dispatch(event.DownloadProgressEvent, id)
	bus.Dispatch(event.DownloadCompleteEvent, id)
	bus.Dispatch(event.DownloadUpdateEvent, id)

	assert.Len(t, eventChannel, 2, "only subscribed events should be delivered")
	first := <-eventChannel
	assert.Equal(t, event.DownloadProgressEvent, first.Event)
	assert.Equal(t, id, first.Payload)
}

func Test_Dispatch_RejectsNonUUIDPayload(t *testing.T) {
	t.Parallel()
	bus := event.New()

	eventChannel := make(event.HandlerChannel, 1)
	bus.RegisterHandlerChannel(eventChannel, event.DownloadUpdateEvent)

	bus.Dispatch(event.DownloadUpdateEvent, "not-a-uuid")
	assert.Empty(t, eventChannel)
}

// Workers dispatch from their own goroutines while other parts of the
// system are still registering their subscriptions; neither side may
// corrupt the handler tables or trip the race detector.
func Test_RegistrationMaySafelyRaceDispatch(t *testing.T) {
	t.Parallel()
	bus := event.New()
	id := uuid.New()

	wg := sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range [200]struct{}{} {
			bus.Dispatch(event.DownloadProgressEvent, id)
		}
	}()
	go func() {
		defer wg.Done()
		for range [200]struct{}{} {
			eventChannel := make(event.HandlerChannel, 256)
			bus.RegisterHandlerChannel(eventChannel, event.DownloadProgressEvent)
		}
	}()

	wg.Wait()
}

func Test_Deregister_StopsDeliveryWithoutBlockingDispatch(t *testing.T) {
	t.Parallel()
	bus := event.New()

	// Unbuffered with no receiver; a send after deregistration would
	// block the dispatching goroutine forever.
	eventChannel := make(event.HandlerChannel)
	bus.RegisterHandlerChannel(eventChannel, event.DownloadProgressEvent, event.DownloadUpdateEvent)
	bus.DeregisterHandlerChannel(eventChannel)

	dispatched := make(chan struct{})
	go func() {
		bus.Dispatch(event.DownloadProgressEvent, uuid.New())
		bus.Dispatch(event.DownloadUpdateEvent, uuid.New())
		close(dispatched)
	}()

	select {
	case <-dispatched:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a deregistered channel")
	}
}

func Test_Deregister_LeavesOtherSubscriptionsIntact(t *testing.T) {
	t.Parallel()
	bus := event.New()

	removed := make(event.HandlerChannel, 1)
	kept := make(event.HandlerChannel, 1)
	bus.RegisterHandlerChannel(removed, event.DownloadCompleteEvent)
	bus.RegisterHandlerChannel(kept, event.DownloadCompleteEvent)
	bus.DeregisterHandlerChannel(removed)

	bus.Dispatch(event.DownloadCompleteEvent, uuid.New())
	assert.Len(t, kept, 1)
	assert.Empty(t, removed)
}
