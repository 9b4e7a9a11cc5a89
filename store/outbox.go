package store

import (
	"context"
	"fmt"
	"time"

	"pycramdb/protocol"
)

type OutboxMessage struct {
	ID        int64
	Topic     string
	Payload   []byte
	MsgType   string
	Source    string
	Retries   int
	CreatedAt time.Time
	SentAt    *time.Time
}

// eventSink holds where action events are enqueued. An empty topic
// disables the outbox.
type eventSink struct {
	topic  string
	source string
}

// EnableEvents makes every insert and delete enqueue an event envelope on
// topic inside its own transaction.
func (db *DB) EnableEvents(topic, source string) {
	db.events = eventSink{topic: topic, source: source}
}

func (db *DB) enqueueEvent(ctx context.Context, q querier, msgType string, payload any) error {
	if db.events.topic == "" {
		return nil
	}
	env, err := protocol.NewEnvelope(msgType, db.events.source, payload)
	if err != nil {
		return fmt.Errorf("build %s event: %w", msgType, err)
	}
	data, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode %s event: %w", msgType, err)
	}
	return db.enqueueOutbox(ctx, q, db.events.topic, data, msgType, db.events.source)
}

func (db *DB) enqueueOutbox(ctx context.Context, q querier, topic string, payload []byte, msgType, source string) error {
	_, err := q.ExecContext(ctx, db.Q(`INSERT INTO outbox (topic, payload, msg_type, source) VALUES (?, ?, ?, ?)`),
		topic, payload, msgType, source)
	if err != nil {
		return fmt.Errorf("enqueue outbox: %w", err)
	}
	return nil
}

func (db *DB) EnqueueOutbox(ctx context.Context, topic string, payload []byte, msgType, source string) error {
	return db.enqueueOutbox(ctx, db.DB, topic, payload, msgType, source)
}

func (db *DB) ListPendingOutbox(ctx context.Context, limit int) ([]*OutboxMessage, error) {
	rows, err := db.QueryContext(ctx, db.Q(`SELECT id, topic, payload, msg_type, source, retries, created_at FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []*OutboxMessage
	for rows.Next() {
		var m OutboxMessage
		var createdAt any
		if err := rows.Scan(&m.ID, &m.Topic, &m.Payload, &m.MsgType, &m.Source, &m.Retries, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt = parseTime(createdAt)
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func (db *DB) GetOutbox(ctx context.Context, id int64) (*OutboxMessage, error) {
	var m OutboxMessage
	var createdAt, sentAt any
	err := db.QueryRowContext(ctx, db.Q(`SELECT id, topic, payload, msg_type, source, retries, created_at, sent_at FROM outbox WHERE id=?`), id).
		Scan(&m.ID, &m.Topic, &m.Payload, &m.MsgType, &m.Source, &m.Retries, &createdAt, &sentAt)
	if err != nil {
		return nil, notFoundOr(err, "outbox", id)
	}
	m.CreatedAt = parseTime(createdAt)
	m.SentAt = parseTimePtr(sentAt)
	return &m, nil
}

func (db *DB) AckOutbox(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, db.Q(`UPDATE outbox SET sent_at=`+db.dialect.Now()+` WHERE id=?`), id)
	return err
}

func (db *DB) IncrementOutboxRetries(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, db.Q(`UPDATE outbox SET retries=retries+1 WHERE id=?`), id)
	return err
}
