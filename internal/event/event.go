// A collection of event names and common methods used to handle the
// events, typically redirecting the handling to the API broadcaster
// via the `Handler` interface.
package event

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/pkg/logger"
)

var log = logger.Get("Activity")

// Events emitted by the download service that should be handled by
// another, silo'd part of Reel's architecture (currently only the
// websocket activity feed).
type (
	Event         string
	Payload       any
	HandlerMethod func(Event, Payload)

	HandlerChannel chan HandlerEvent
	HandlerEvent   struct {
		Event   Event
		Payload Payload
	}

	EventDispatcher interface {
		Dispatch(Event, Payload)
	}

	EventHandler interface {
		RegisterAsyncHandlerFunction(Event, HandlerMethod)
		RegisterHandlerFunction(Event, HandlerMethod)
		RegisterHandlerChannel(HandlerChannel, ...Event)
		DeregisterHandlerChannel(HandlerChannel)
	}

	EventCoordinator interface {
		EventDispatcher
		EventHandler
	}

	// eventHandler guards its handler tables with a RWMutex so that
	// registration may safely race a Dispatch from a worker goroutine.
	eventHandler struct {
		mu           sync.RWMutex
		fnHandlers   map[Event][]handlerMethod
		chanHandlers map[Event][]HandlerChannel
	}

	handlerMethod struct {
		handle HandlerMethod
		async  bool
	}
)

const (
	// DownloadUpdateEvent indicates the job with the payload UUID has
	// changed state (including reaching a terminal state).
	DownloadUpdateEvent Event = "download:update"

	// DownloadProgressEvent indicates new progress information for
	// the job with the payload UUID, with no state change implied.
	DownloadProgressEvent Event = "download:update:progress"

	DownloadCompleteEvent Event = "download:complete"
)

func New() EventCoordinator {
	return &eventHandler{
		fnHandlers:   make(map[Event][]handlerMethod),
		chanHandlers: make(map[Event][]HandlerChannel),
	}
}

// RegisterHandlerChannel takes an event type and a channel and will send Event messages on
// the channel any time a Dispatch for the provided event occurs.
// This method can be used multiple times for different events on the same channel.
//
// If the channel is BLOCKED when the event bus attempts to send the message on the handler channel,
// then the thread dispatching the event will also be BLOCKED. It is recomended to buffer the handler channels
// appropiately to avoid dispatcher-side blocking.
func (handler *eventHandler) RegisterHandlerChannel(handle HandlerChannel, events ...Event) {
	handler.mu.Lock()
	defer handler.mu.Unlock()

	for _, event := range events {
		handler.chanHandlers[event] = append(handler.chanHandlers[event], handle)
	}
}

// DeregisterHandlerChannel removes the channel provided from every
// event it was registered against. Once this method returns the event
// bus will never send on the channel again, so the owner is free to
// drain and abandon it.
func (handler *eventHandler) DeregisterHandlerChannel(handle HandlerChannel) {
	handler.mu.Lock()
	defer handler.mu.Unlock()

	for event, handles := range handler.chanHandlers {
		remaining := handles[:0]
		for _, candidate := range handles {
			if candidate != handle {
				remaining = append(remaining, candidate)
			}
		}
		handler.chanHandlers[event] = remaining
	}
}

// RegisterHandlerFunction takes an event type and a handler method which will be stored
// and called with the payload for the event whenever it is provided to the 'Dispatch' method.
// The handle provided should be guaranteed to return quickly, else other threads calling
// Dispatch on this event bus will be blocked.
func (handler *eventHandler) RegisterHandlerFunction(event Event, handle HandlerMethod) {
	handler.registerHandlerMethod(event, handlerMethod{handle, false})
}

// RegisterAsyncHandlerFunction accepts an Event and a HandlerMethod which will be stored and
// called inside of a goroutine when the event is handled.
// The speed at which this handle runs is not important to the event bus, unlike RegisterHandlerFunction.
func (handler *eventHandler) RegisterAsyncHandlerFunction(event Event, handle HandlerMethod) {
	handler.registerHandlerMethod(event, handlerMethod{handle, true})
}

func (handler *eventHandler) registerHandlerMethod(event Event, handle handlerMethod) {
	handler.mu.Lock()
	defer handler.mu.Unlock()

	handler.fnHandlers[event] = append(handler.fnHandlers[event], handle)
}

// Dispatch takes an event type and a payload and dispatches the payload to the handlers
// registered for the event type provided.
// Note that this method WILL block if a synchronous handler function is blocking, or if channel
// handlers are blocked.
func (handler *eventHandler) Dispatch(event Event, payload Payload) {
	if err := handler.validatePayload(event, payload); err != nil {
		log.Emit(logger.FATAL, "Dispatch for event %v FAILED validation: %v", event, err)
		return
	}

	handler.mu.RLock()
	defer handler.mu.RUnlock()

	if handles, ok := handler.fnHandlers[event]; ok {
		for _, handle := range handles {
			if handle.async {
				go handle.handle(event, payload)
			} else {
				handle.handle(event, payload)
			}
		}
	}

	if handles, ok := handler.chanHandlers[event]; ok {
		payload := HandlerEvent{event, payload}
		for _, handle := range handles {
			handle <- payload
		}
	}
}

// validatePayload ensures that the payload provided is valid for the event specified. An error
// will be returned if the payload is not valid, and the event should not be sent to the registered
// handlers in this case.
func (handler *eventHandler) validatePayload(event Event, payload Payload) error {
	var payloadTypeName string
	if t := reflect.TypeOf(payload); t != nil {
		payloadTypeName = t.Name()
	} else {
		payloadTypeName = "Nil"
	}

	switch event {
	case DownloadUpdateEvent, DownloadProgressEvent, DownloadCompleteEvent:
		if _, ok := payload.(uuid.UUID); !ok {
			return fmt.Errorf("illegal payload (type %s) for %s event. Expected uuid.UUID payload", payloadTypeName, event)
		}

		return nil
	}

	return fmt.Errorf("event type %s not recognized for validation", event)
}
