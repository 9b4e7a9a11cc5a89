package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pycramdb/action"
	"pycramdb/protocol"
)

// ActionSummary is the shared row of an action without its kind columns.
type ActionSummary struct {
	ID           int64       `json:"id"`
	Kind         action.Kind `json:"kind"`
	RobotStateID int64       `json:"robot_state_id"`
	CreatedAt    time.Time   `json:"created_at"`
}

// InsertAction stores a as one actions row plus one row in its kind table
// and returns the new id, which is also written to a's header. Referenced
// value objects given by value are inserted in the same transaction.
func (db *DB) InsertAction(ctx context.Context, a action.Action) (int64, error) {
	if a == nil {
		return 0, &action.SchemaMismatchError{Reason: "nil action"}
	}
	v, err := db.registry.Lookup(a.Kind())
	if err != nil {
		return 0, err
	}
	rec, err := v.Prepare(a)
	if err != nil {
		return 0, err
	}
	hdr := a.Header()

	var id int64
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		rsID, err := db.resolver.EnsureID(ctx, tx, action.ValueRobotState, hdr.RobotState)
		if err != nil {
			return fmt.Errorf("robot state: %w", err)
		}
		args := make([]any, 1, len(v.Fields)+1)
		for _, f := range v.Fields {
			arg, err := db.columnArg(ctx, tx, f, rec[f.Name])
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			args = append(args, arg)
		}

		id, err = db.insertReturningID(ctx, tx, `INSERT INTO actions (kind, robot_state_id) VALUES (?, ?)`, string(v.Kind), rsID)
		if err != nil {
			return fmt.Errorf("insert base row: %w", err)
		}
		args[0] = id
		if _, err := tx.ExecContext(ctx, db.Q(variantInsertSQL(v)), args...); err != nil {
			return fmt.Errorf("insert %s row: %w", v.Table, err)
		}
		return db.enqueueEvent(ctx, tx, protocol.TypeActionRecorded, &protocol.ActionRecorded{
			ActionID:     id,
			Kind:         string(v.Kind),
			RobotStateID: rsID,
		})
	})
	if err != nil {
		return 0, fmt.Errorf("insert %s action: %w", v.Kind, err)
	}
	hdr.ID = id
	log.WithField("kind", v.Kind).Debugf("action %d recorded", id)
	return id, nil
}

func (db *DB) columnArg(ctx context.Context, q querier, f action.Field, val any) (any, error) {
	if val == nil {
		return nil, nil
	}
	switch f.Type {
	case action.FieldRef:
		ref := val.(action.Reference)
		if f.Nullable && ref.RefID() == 0 && ref.RefValue() == nil {
			return nil, nil
		}
		return db.resolver.EnsureID(ctx, q, f.Target, ref)
	case action.FieldArm:
		return string(val.(action.Arms)), nil
	case action.FieldFloat:
		if p, ok := val.(*float64); ok {
			if p == nil {
				return nil, nil
			}
			return *p, nil
		}
	}
	return val, nil
}

func variantInsertSQL(v *action.Variant) string {
	cols := append([]string{"id"}, v.Columns()...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, v.Table, strings.Join(cols, ", "), marks)
}

// LoadAction reads the action with the given id back into its typed
// variant. References come back as ids only.
func (db *DB) LoadAction(ctx context.Context, id int64) (action.Action, error) {
	var a action.Action
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var kind string
		var rsID int64
		err := tx.QueryRowContext(ctx, db.Q(`SELECT kind, robot_state_id FROM actions WHERE id=?`), id).Scan(&kind, &rsID)
		if errors.Is(err, sql.ErrNoRows) {
			return &NotFoundError{Table: "actions", ID: id}
		}
		if err != nil {
			return fmt.Errorf("load action %d: %w", id, err)
		}
		v, err := db.registry.Lookup(action.Kind(kind))
		if err != nil {
			return &CorruptDataError{ID: id, Reason: "unregistered kind", Err: err}
		}
		rec, err := db.loadVariantRow(ctx, tx, v, id)
		if err != nil {
			return err
		}
		a = v.Decode(action.Base{ID: id, RobotState: action.RefID[action.RobotState](rsID)}, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (db *DB) loadVariantRow(ctx context.Context, q querier, v *action.Variant, id int64) (action.Record, error) {
	dest := make([]any, len(v.Fields)+1)
	var rowID int64
	dest[0] = &rowID
	for i, f := range v.Fields {
		switch f.Type {
		case action.FieldFloat:
			dest[i+1] = &sql.NullFloat64{}
		case action.FieldRef:
			dest[i+1] = &sql.NullInt64{}
		default:
			dest[i+1] = &sql.NullString{}
		}
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id=?`, strings.Join(append([]string{"id"}, v.Columns()...), ", "), v.Table)
	err := q.QueryRowContext(ctx, db.Q(query), id).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &CorruptDataError{ID: id, Reason: fmt.Sprintf("no %s row", v.Table)}
	}
	if err != nil {
		return nil, fmt.Errorf("load %s row %d: %w", v.Table, id, err)
	}

	rec := make(action.Record, len(v.Fields))
	for i, f := range v.Fields {
		var val any
		valid := true
		switch d := dest[i+1].(type) {
		case *sql.NullFloat64:
			val, valid = d.Float64, d.Valid
		case *sql.NullInt64:
			val, valid = action.StoredRef(d.Int64), d.Valid
		case *sql.NullString:
			val, valid = d.String, d.Valid
			if f.Type == action.FieldArm {
				val = action.Arms(d.String)
			}
		}
		if !valid {
			if !f.Nullable {
				return nil, &CorruptDataError{ID: id, Reason: fmt.Sprintf("%s.%s is NULL", v.Table, f.Column)}
			}
			val = nil
		}
		rec[f.Name] = val
	}
	return rec, nil
}

// DeleteAction removes an action and its kind row. Referenced value
// objects are kept since other actions may share them.
func (db *DB) DeleteAction(ctx context.Context, id int64) error {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var kind string
		err := tx.QueryRowContext(ctx, db.Q(`SELECT kind FROM actions WHERE id=?`), id).Scan(&kind)
		if errors.Is(err, sql.ErrNoRows) {
			return &NotFoundError{Table: "actions", ID: id}
		}
		if err != nil {
			return err
		}
		if v, err := db.registry.Lookup(action.Kind(kind)); err == nil {
			if _, err := tx.ExecContext(ctx, db.Q(fmt.Sprintf(`DELETE FROM %s WHERE id=?`, v.Table)), id); err != nil {
				return fmt.Errorf("delete %s row: %w", v.Table, err)
			}
		} else {
			log.WithField("kind", kind).Warnf("deleting action %d of unregistered kind", id)
		}
		if _, err := tx.ExecContext(ctx, db.Q(`DELETE FROM actions WHERE id=?`), id); err != nil {
			return fmt.Errorf("delete base row: %w", err)
		}
		return db.enqueueEvent(ctx, tx, protocol.TypeActionDeleted, &protocol.ActionDeleted{ActionID: id, Kind: kind})
	})
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return fmt.Errorf("delete action %d: %w", id, err)
	}
	return nil
}

// ListActions returns action summaries newest first. An empty kind lists
// every kind; limit <= 0 means no limit.
func (db *DB) ListActions(ctx context.Context, kind action.Kind, limit int) ([]*ActionSummary, error) {
	where, args, err := db.kindFilter(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, kind, robot_state_id, created_at FROM actions` + where + ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, db.Q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()
	var out []*ActionSummary
	for rows.Next() {
		var s ActionSummary
		var k string
		var createdAt any
		if err := rows.Scan(&s.ID, &k, &s.RobotStateID, &createdAt); err != nil {
			return nil, err
		}
		s.Kind = action.Kind(k)
		s.CreatedAt = parseTime(createdAt)
		out = append(out, &s)
	}
	return out, rows.Err()
}

// CountActions counts stored actions, optionally of one kind.
func (db *DB) CountActions(ctx context.Context, kind action.Kind) (int, error) {
	where, args, err := db.kindFilter(kind)
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, db.Q(`SELECT COUNT(*) FROM actions`+where), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return n, nil
}

func (db *DB) kindFilter(kind action.Kind) (string, []any, error) {
	if kind == "" {
		return "", nil, nil
	}
	if _, err := db.registry.Lookup(kind); err != nil {
		return "", nil, err
	}
	return ` WHERE kind=?`, []any{string(kind)}, nil
}
