package event

import "github.com/oklog/ulid/v2"

// World lifecycle notifications, emitted by the World while it applies changes.

type EntitySpawned struct {
	ID  ulid.ULID
	Tag string
}

type EntityRemoved struct {
	ID  ulid.ULID
	Tag string
}

// MessageDropped reports a SendMessage whose target did not exist.
type MessageDropped struct {
	Target ulid.ULID
	Keys   int
}
