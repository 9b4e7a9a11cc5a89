package messaging

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pycramdb/protocol"
	"pycramdb/store"
)

const drainBatch = 50

// Publisher is the sending side of Client.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

// OutboxDrainer periodically sends pending outbox messages.
type OutboxDrainer struct {
	db       *store.DB
	pub      Publisher
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewOutboxDrainer(db *store.DB, pub Publisher, interval time.Duration) *OutboxDrainer {
	return &OutboxDrainer{
		db:       db,
		pub:      pub,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (d *OutboxDrainer) Start() {
	go d.run()
}

// Stop ends the drain loop and waits for an in-flight batch to finish.
func (d *OutboxDrainer) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
		<-d.done
	})
}

func (d *OutboxDrainer) run() {
	defer close(d.done)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopChan:
			return
		case <-ticker.C:
			d.Drain(context.Background())
		}
	}
}

// Drain publishes one batch of pending messages and returns how many were
// acknowledged. Failed messages stay pending with their retry count bumped.
func (d *OutboxDrainer) Drain(ctx context.Context) int {
	msgs, err := d.db.ListPendingOutbox(ctx, drainBatch)
	if err != nil {
		log.WithError(err).Error("outbox: list pending")
		return 0
	}
	sent := 0
	for _, msg := range msgs {
		fields := logrus.Fields{"outbox_id": msg.ID, "topic": msg.Topic, "type": msg.MsgType}
		if err := d.pub.Publish(ctx, msg.Topic, eventKey(msg.Payload), msg.Payload); err != nil {
			log.WithFields(fields).WithError(err).Warn("outbox: publish failed")
			if err := d.db.IncrementOutboxRetries(ctx, msg.ID); err != nil {
				log.WithFields(fields).WithError(err).Error("outbox: bump retries")
			}
			continue
		}
		if err := d.db.AckOutbox(ctx, msg.ID); err != nil {
			log.WithFields(fields).WithError(err).Error("outbox: ack")
			continue
		}
		sent++
	}
	return sent
}

// eventKey picks the action id out of an event envelope.
func eventKey(data []byte) string {
	env, err := protocol.Decode(data)
	if err != nil {
		return ""
	}
	var p struct {
		ActionID int64 `json:"action_id"`
	}
	if err := json.Unmarshal(env.Payload, &p); err != nil || p.ActionID == 0 {
		return ""
	}
	return strconv.FormatInt(p.ActionID, 10)
}
