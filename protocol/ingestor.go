package protocol

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "protocol")

// FilterFunc returns true if the message should be processed.
type FilterFunc func(hdr *RawHeader) bool

// MessageHandler receives decoded action events.
// Embed NoOpHandler and override only the methods you need.
type MessageHandler interface {
	HandleActionRecorded(env *Envelope, p *ActionRecorded)
	HandleActionDeleted(env *Envelope, p *ActionDeleted)
}

// Ingestor performs two-phase decode and dispatches to a MessageHandler.
type Ingestor struct {
	handler MessageHandler
	filter  FilterFunc
}

func NewIngestor(handler MessageHandler, filter FilterFunc) *Ingestor {
	return &Ingestor{
		handler: handler,
		filter:  filter,
	}
}

// HandleRaw is the entry point for raw message bytes from the messaging layer.
func (ing *Ingestor) HandleRaw(data []byte) {
	var hdr RawHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		log.WithError(err).Warn("header decode error")
		return
	}

	if IsExpiredHeader(&hdr) {
		log.WithFields(logrus.Fields{"id": hdr.ID, "type": hdr.Type}).Debug("dropping expired message")
		return
	}

	if ing.filter != nil && !ing.filter(&hdr) {
		return
	}

	env, err := Decode(data)
	if err != nil {
		log.WithError(err).Warn("envelope decode error")
		return
	}

	switch env.Type {
	case TypeActionRecorded:
		decodeAndCall(ing.handler.HandleActionRecorded, env)
	case TypeActionDeleted:
		decodeAndCall(ing.handler.HandleActionDeleted, env)
	default:
		log.WithField("type", env.Type).Warn("unknown message type")
	}
}

// decodeAndCall unmarshals the payload and calls the handler method.
func decodeAndCall[T any](fn func(*Envelope, *T), env *Envelope) {
	var p T
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		log.WithError(err).WithField("type", env.Type).Warn("payload decode error")
		return
	}
	fn(env, &p)
}
