package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted during frame N are
// readable in frame N+1, after SwapBuffers at the start of the frame.
// Emission is safe from any goroutine so hosts can feed input from their
// event loop; reading and dispatch belong to the frame goroutine.
type Bus struct {
	mu       sync.Mutex // protects back and handlers
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	order    []reflect.Type // first-emission order of types, for stable dispatch
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer (readable next frame).
func Emit[T any](b *Bus, event T) {
	if b == nil {
		return
	}
	t := typeOf[T]()
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, seen := b.back[t]; !seen {
		if _, known := b.front[t]; !known {
			b.order = append(b.order, t)
		}
	}
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at frame start.
func (b *Bus) SwapBuffers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// Pending returns the front-buffer events of type T in emission order.
func Pending[T any](b *Bus) []T {
	events := b.front[typeOf[T]()]
	out := make([]T, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.(T))
	}
	return out
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	b.mu.Lock()
	handlers := make(map[reflect.Type][]any, len(b.handlers))
	for t, hs := range b.handlers {
		handlers[t] = hs
	}
	order := append([]reflect.Type(nil), b.order...)
	b.mu.Unlock()

	for _, t := range order {
		for _, ev := range b.front[t] {
			for _, h := range handlers[t] {
				// Subscribe and Emit key on the same type, so the call is well typed.
				callHandler(h, ev)
			}
		}
	}
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
