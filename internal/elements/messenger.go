package elements

import (
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/variant"
	"go.uber.org/zap"
)

// Messenger sends a text message to itself every update and logs what it
// receives.
type Messenger struct {
	entity.Base
	tag      string
	text     string
	received int
	log      *zap.Logger
}

func NewMessenger(tag, text string, log *zap.Logger) *Messenger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Messenger{tag: tag, text: text, log: log}
}

func (m *Messenger) Configuration() entity.Configuration {
	return entity.Configuration{Tag: m.tag, UpdateFrequency: entity.EveryFrame}
}

func (m *Messenger) OnUpdate(float64) []entity.WorldChange {
	return []entity.WorldChange{entity.SendMessage{
		Target:  m.ID(),
		Message: variant.Message{"msg": variant.String(m.text)},
	}}
}

func (m *Messenger) OnMessage(msg variant.Message) {
	m.received++
	fields := make([]zap.Field, 0, len(msg))
	for k, v := range msg {
		fields = append(fields, zap.Stringer(k, v))
	}
	m.log.Info("message received", fields...)
}

func (m *Messenger) Received() int { return m.received }
