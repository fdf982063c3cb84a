// Package input carries abstracted input events and answers action queries.
// Raw device polling happens outside the engine; hosts translate whatever
// they poll into Events.
package input

type EventKind uint8

const (
	EventKey EventKind = iota
	EventButton
	EventAxis
)

func (k EventKind) String() string {
	switch k {
	case EventKey:
		return "key"
	case EventButton:
		return "button"
	case EventAxis:
		return "axis"
	}
	return "unknown"
}

// Event is one pending input change. Code names the physical key, button
// or axis ("KeyW", "DPadUp", "LeftStickY").
type Event struct {
	Kind    EventKind
	Code    string
	Pressed bool
	Value   float32
}

type binding struct {
	kind EventKind
	code string
}

// Handler maps physical codes to named actions and tracks their state.
type Handler struct {
	actions map[binding]string
	pressed map[string]bool
	axes    map[string]float32
}

func NewHandler() *Handler {
	return &Handler{
		actions: make(map[binding]string),
		pressed: make(map[string]bool),
		axes:    make(map[string]float32),
	}
}

func (h *Handler) MapKey(code, action string)    { h.actions[binding{EventKey, code}] = action }
func (h *Handler) MapButton(code, action string) { h.actions[binding{EventButton, code}] = action }
func (h *Handler) MapAxis(code, action string)   { h.actions[binding{EventAxis, code}] = action }

// Handle updates action state from one event. Unmapped events are ignored.
func (h *Handler) Handle(ev Event) {
	action, ok := h.actions[binding{ev.Kind, ev.Code}]
	if !ok {
		return
	}
	switch ev.Kind {
	case EventKey, EventButton:
		if ev.Pressed {
			h.pressed[action] = true
		} else {
			delete(h.pressed, action)
		}
	case EventAxis:
		if ev.Value == 0 {
			delete(h.axes, action)
		} else {
			h.axes[action] = ev.Value
		}
	}
}

// Pressed reports whether any key or button bound to action is held.
func (h *Handler) Pressed(action string) bool {
	return h.pressed[action]
}

// Axis returns the last non-zero value of an axis action.
func (h *Handler) Axis(action string) (float32, bool) {
	v, ok := h.axes[action]
	return v, ok
}

// DynamicAxis prefers the analogue axis and falls back to a digital pair:
// positive held → 1, negative held → -1, both or neither → no value.
func (h *Handler) DynamicAxis(axis, positive, negative string) (float32, bool) {
	if v, ok := h.Axis(axis); ok {
		return v, true
	}
	pos, neg := h.Pressed(positive), h.Pressed(negative)
	switch {
	case pos && !neg:
		return 1, true
	case neg && !pos:
		return -1, true
	}
	return 0, false
}
