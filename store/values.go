package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pycramdb/action"
)

func (db *DB) insertReturningID(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, db.Q(query+` RETURNING id`), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func notFoundOr(err error, table string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Table: table, ID: id}
	}
	return fmt.Errorf("get %s %d: %w", table, id, err)
}

func (db *DB) insertPosition(ctx context.Context, q querier, p *action.Position) (int64, error) {
	id, err := db.insertReturningID(ctx, q, `INSERT INTO positions (x, y, z) VALUES (?, ?, ?)`, p.X, p.Y, p.Z)
	if err != nil {
		return 0, fmt.Errorf("insert position: %w", err)
	}
	return id, nil
}

func (db *DB) insertQuaternion(ctx context.Context, q querier, o *action.Quaternion) (int64, error) {
	id, err := db.insertReturningID(ctx, q, `INSERT INTO quaternions (x, y, z, w) VALUES (?, ?, ?, ?)`, o.X, o.Y, o.Z, o.W)
	if err != nil {
		return 0, fmt.Errorf("insert quaternion: %w", err)
	}
	return id, nil
}

func (db *DB) insertObject(ctx context.Context, q querier, o *action.ObjectDesignator) (int64, error) {
	id, err := db.insertReturningID(ctx, q, `INSERT INTO objects (name, type) VALUES (?, ?)`, o.Name, o.Type)
	if err != nil {
		return 0, fmt.Errorf("insert object: %w", err)
	}
	return id, nil
}

func (db *DB) insertRobotState(ctx context.Context, q querier, s *action.RobotState) (int64, error) {
	id, err := db.insertReturningID(ctx, q,
		`INSERT INTO robot_states (pos_x, pos_y, pos_z, ori_x, ori_y, ori_z, ori_w, torso_height, type) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Position.X, s.Position.Y, s.Position.Z,
		s.Orientation.X, s.Orientation.Y, s.Orientation.Z, s.Orientation.W,
		s.TorsoHeight, s.Type)
	if err != nil {
		return 0, fmt.Errorf("insert robot state: %w", err)
	}
	return id, nil
}

// InsertPosition stores p and returns its id.
func (db *DB) InsertPosition(ctx context.Context, p action.Position) (int64, error) {
	return db.insertPosition(ctx, db.DB, &p)
}

func (db *DB) InsertQuaternion(ctx context.Context, o action.Quaternion) (int64, error) {
	return db.insertQuaternion(ctx, db.DB, &o)
}

func (db *DB) InsertObject(ctx context.Context, o action.ObjectDesignator) (int64, error) {
	return db.insertObject(ctx, db.DB, &o)
}

func (db *DB) InsertRobotState(ctx context.Context, s action.RobotState) (int64, error) {
	return db.insertRobotState(ctx, db.DB, &s)
}

// InsertValue stores a value object of the given kind. v must be the
// matching struct or a pointer to it.
func (db *DB) InsertValue(ctx context.Context, kind action.ValueKind, v any) (int64, error) {
	return db.insertValue(ctx, db.DB, kind, v)
}

func (db *DB) insertValue(ctx context.Context, q querier, kind action.ValueKind, v any) (int64, error) {
	switch val := v.(type) {
	case action.Position:
		return db.insertValue(ctx, q, kind, &val)
	case action.Quaternion:
		return db.insertValue(ctx, q, kind, &val)
	case action.ObjectDesignator:
		return db.insertValue(ctx, q, kind, &val)
	case action.RobotState:
		return db.insertValue(ctx, q, kind, &val)
	}
	switch kind {
	case action.ValuePosition:
		if p, ok := v.(*action.Position); ok && p != nil {
			return db.insertPosition(ctx, q, p)
		}
	case action.ValueQuaternion:
		if o, ok := v.(*action.Quaternion); ok && o != nil {
			return db.insertQuaternion(ctx, q, o)
		}
	case action.ValueObject:
		if o, ok := v.(*action.ObjectDesignator); ok && o != nil {
			return db.insertObject(ctx, q, o)
		}
	case action.ValueRobotState:
		if s, ok := v.(*action.RobotState); ok && s != nil {
			return db.insertRobotState(ctx, q, s)
		}
	default:
		return 0, fmt.Errorf("unknown value kind %q", kind)
	}
	return 0, fmt.Errorf("cannot store %T as %s", v, kind)
}

func (db *DB) GetPosition(ctx context.Context, id int64) (*action.Position, error) {
	var p action.Position
	err := db.QueryRowContext(ctx, db.Q(`SELECT x, y, z FROM positions WHERE id=?`), id).Scan(&p.X, &p.Y, &p.Z)
	if err != nil {
		return nil, notFoundOr(err, "positions", id)
	}
	return &p, nil
}

func (db *DB) GetQuaternion(ctx context.Context, id int64) (*action.Quaternion, error) {
	var o action.Quaternion
	err := db.QueryRowContext(ctx, db.Q(`SELECT x, y, z, w FROM quaternions WHERE id=?`), id).Scan(&o.X, &o.Y, &o.Z, &o.W)
	if err != nil {
		return nil, notFoundOr(err, "quaternions", id)
	}
	return &o, nil
}

func (db *DB) GetObject(ctx context.Context, id int64) (*action.ObjectDesignator, error) {
	var o action.ObjectDesignator
	err := db.QueryRowContext(ctx, db.Q(`SELECT name, type FROM objects WHERE id=?`), id).Scan(&o.Name, &o.Type)
	if err != nil {
		return nil, notFoundOr(err, "objects", id)
	}
	return &o, nil
}

func (db *DB) GetRobotState(ctx context.Context, id int64) (*action.RobotState, error) {
	var s action.RobotState
	err := db.QueryRowContext(ctx, db.Q(`SELECT pos_x, pos_y, pos_z, ori_x, ori_y, ori_z, ori_w, torso_height, type FROM robot_states WHERE id=?`), id).
		Scan(&s.Position.X, &s.Position.Y, &s.Position.Z,
			&s.Orientation.X, &s.Orientation.Y, &s.Orientation.Z, &s.Orientation.W,
			&s.TorsoHeight, &s.Type)
	if err != nil {
		return nil, notFoundOr(err, "robot_states", id)
	}
	return &s, nil
}

// GetValue loads a value object of the given kind as a pointer to its struct.
func (db *DB) GetValue(ctx context.Context, kind action.ValueKind, id int64) (any, error) {
	switch kind {
	case action.ValuePosition:
		return db.GetPosition(ctx, id)
	case action.ValueQuaternion:
		return db.GetQuaternion(ctx, id)
	case action.ValueObject:
		return db.GetObject(ctx, id)
	case action.ValueRobotState:
		return db.GetRobotState(ctx, id)
	}
	return nil, fmt.Errorf("unknown value kind %q", kind)
}

// CountValues returns the number of stored value objects of one kind.
func (db *DB) CountValues(ctx context.Context, kind action.ValueKind) (int, error) {
	table, ok := valueTables[kind]
	if !ok {
		return 0, fmt.Errorf("unknown value kind %q", kind)
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
