package culling

import (
	"slices"

	"github.com/samber/lo"
)

const (
	VISIBLE_ENTER EventType = iota
	VISIBLE_STAY
	VISIBLE_EXIT
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// VisibleEnterEvent is emitted the first frame an object is visible to a camera
type VisibleEnterEvent struct {
	Camera string
	Key    BoundingKey
}

func (e VisibleEnterEvent) Type() EventType { return VISIBLE_ENTER }

type VisibleStayEvent struct {
	Camera string
	Key    BoundingKey
}

func (e VisibleStayEvent) Type() EventType { return VISIBLE_STAY }

// VisibleExitEvent is emitted the first frame an object is no longer visible,
// or when it is removed while visible.
type VisibleExitEvent struct {
	Camera string
	Key    BoundingKey
}

func (e VisibleExitEvent) Type() EventType { return VISIBLE_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// visible sets per camera, previous frame and current frame
	previous map[string][]BoundingKey
	current  map[string][]BoundingKey
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 256),
		previous:  make(map[string][]BoundingKey),
		current:   make(map[string][]BoundingKey),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) hasListeners() bool {
	return len(e.listeners) > 0
}

// recordVisible stores the visible keys of a camera for the current frame
func (e *Events) recordVisible(camera string, keys []BoundingKey) {
	e.current[camera] = slices.Clone(keys)
}

// forget drops key from the tracked sets, emitting the exits it implies
func (e *Events) forget(key BoundingKey) {
	for camera, keys := range e.previous {
		if i := slices.Index(keys, key); i >= 0 {
			e.buffer = append(e.buffer, VisibleExitEvent{Camera: camera, Key: key})
			e.previous[camera] = slices.Delete(keys, i, i+1)
		}
	}
	for camera, keys := range e.current {
		if i := slices.Index(keys, key); i >= 0 {
			e.current[camera] = slices.Delete(keys, i, i+1)
		}
	}
}

// processVisibilityEvents compares current and previous sets to detect Enter/Stay/Exit.
// A camera not culled this frame keeps its previous set.
func (e *Events) processVisibilityEvents() {
	cameras := lo.Keys(e.current)
	slices.Sort(cameras)

	for _, camera := range cameras {
		current := e.current[camera]
		previous := e.previous[camera]

		exited, entered := lo.Difference(previous, current)
		stayed := lo.Intersect(previous, current)

		for _, key := range entered {
			e.buffer = append(e.buffer, VisibleEnterEvent{Camera: camera, Key: key})
		}
		for _, key := range stayed {
			e.buffer = append(e.buffer, VisibleStayEvent{Camera: camera, Key: key})
		}
		for _, key := range exited {
			e.buffer = append(e.buffer, VisibleExitEvent{Camera: camera, Key: key})
		}

		e.previous[camera] = current
	}

	clear(e.current)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processVisibilityEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
