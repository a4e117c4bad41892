package core

import "sync"

// EventContext carries a small fixed payload with every fired event.
// Senders and listeners agree on which slots are meaningful per code.
type EventContext struct {
	Data struct {
		U64 [2]uint64
		F64 [2]float64
		U32 [4]uint32
		C   [4]string
	}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * u32 width = data.data.u32[0];
	 * u32 height = data.data.u32[1];
	 * sender is the *platform.Window that changed.
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x02

	// The renderer configuration file changed on disk.
	/* Context usage:
	 * c[0] = path of the file that changed.
	 */
	EVENT_CODE_RENDERER_CONFIG_CHANGED SystemEventCode = 0x03

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 4096

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventCodeEntry struct {
	events []*registeredEvent
}

// State structure.
type eventSystemState struct {
	mu sync.Mutex
	// Lookup table for event codes.
	registered [MAX_MESSAGE_CODES]eventCodeEntry
}

var onceEvent sync.Once
var eventState *eventSystemState

func EventSystemInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{}
	})
	return true
}

func EventSystemShutdown() {
	if eventState == nil {
		return
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	for i := 0; i < MAX_MESSAGE_CODES; i++ {
		eventState.registered[i].events = nil
	}
}

// EventRegister subscribes the listener/callback pair to the given code.
// Duplicate listener registrations for the same code are rejected.
func EventRegister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	for _, e := range eventState.registered[code].events {
		if e.listener == listener {
			LogWarn("event listener already registered for code %d", code)
			return false
		}
	}
	eventState.registered[code].events = append(eventState.registered[code].events, &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// EventUnregister removes a previous registration. Returns false when no
// matching registration is found.
func EventUnregister(code SystemEventCode, listener interface{}) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	events := eventState.registered[code].events
	for i, e := range events {
		if e.listener == listener {
			eventState.registered[code].events = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// EventFire notifies listeners of the given code. If a handler returns true
// the event is considered handled and is not passed on to further listeners.
func EventFire(code SystemEventCode, sender interface{}, data EventContext) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.Lock()
	events := make([]*registeredEvent, len(eventState.registered[code].events))
	copy(events, eventState.registered[code].events)
	eventState.mu.Unlock()

	for _, e := range events {
		if e.callback(code, sender, data) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}
