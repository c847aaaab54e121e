package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/api/websocket"
	"github.com/hbomb79/Reel/internal/event"
)

// activitySocket is the broadcast surface of the websocket hub the
// broadcaster pushes to.
type activitySocket interface {
	Broadcast(message *websocket.SocketMessage)
}

// broadcaster relays job activity from the event bus to the websocket
// hub so that connected clients see state transitions and progress
// without polling.
type broadcaster struct {
	socket       activitySocket
	service      DownloadService
	eventBus     event.EventCoordinator
	eventChannel event.HandlerChannel
}

// newBroadcaster subscribes to the download events immediately so that
// a job dispatched before Run is entered is buffered rather than lost,
// and so that no registration can race a worker's Dispatch.
func newBroadcaster(socket activitySocket, service DownloadService, eventBus event.EventCoordinator) *broadcaster {
	caster := &broadcaster{
		socket:       socket,
		service:      service,
		eventBus:     eventBus,
		eventChannel: make(event.HandlerChannel, 128),
	}

	eventBus.RegisterHandlerChannel(caster.eventChannel,
		event.DownloadUpdateEvent, event.DownloadProgressEvent, event.DownloadCompleteEvent)

	return caster
}

// Run relays download events until the context provided is cancelled.
// On exit the broadcaster deregisters from the event bus, receiving
// throughout so that a worker mid-Dispatch is never left blocked on
// the subscription channel.
func (caster *broadcaster) Run(ctx context.Context) {
	defer func() {
		deregistered := make(chan struct{})
		go func() {
			for {
				select {
				case <-caster.eventChannel:
				case <-deregistered:
					return
				}
			}
		}()

		caster.eventBus.DeregisterHandlerChannel(caster.eventChannel)
		close(deregistered)
	}()

	for {
		select {
		case message := <-caster.eventChannel:
			jobID, ok := message.Payload.(uuid.UUID)
			if !ok {
				log.Errorf("failed to extract UUID from %s event (payload %#v)\n", message.Event, message.Payload)
				continue
			}

			caster.broadcastJob(message.Event, jobID)
		case <-ctx.Done():
			return
		}
	}
}

func (caster *broadcaster) broadcastJob(ev event.Event, jobID uuid.UUID) {
	record, ok := caster.service.Job(jobID)
	if !ok {
		// Evicted between dispatch and relay; nothing to report.
		return
	}

	caster.socket.Broadcast(&websocket.SocketMessage{
		Title: string(ev),
		Body: map[string]any{
			"job_id":   jobID,
			"status":   record.Status,
			"progress": record.Progress,
		},
	})
}
