package action

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueKind names one of the value-object stores an action can reference.
type ValueKind string

const (
	ValueRobotState ValueKind = "robot_state"
	ValuePosition   ValueKind = "position"
	ValueQuaternion ValueKind = "quaternion"
	ValueObject     ValueKind = "object"
)

// ValueKinds lists every value kind in dependency order.
var ValueKinds = []ValueKind{ValuePosition, ValueQuaternion, ValueObject, ValueRobotState}

// NewValue returns a pointer to a zero value object of kind, or nil for
// an unknown kind.
func NewValue(kind ValueKind) any {
	switch kind {
	case ValuePosition:
		return &Position{}
	case ValueQuaternion:
		return &Quaternion{}
	case ValueObject:
		return &ObjectDesignator{}
	case ValueRobotState:
		return &RobotState{}
	}
	return nil
}

// Position is a point in the world frame.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is an orientation in the world frame.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// ObjectDesignator identifies an object an action is performed on.
type ObjectDesignator struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// RobotState is the robot snapshot taken when an action was recorded.
type RobotState struct {
	Position    Position   `json:"position"`
	Orientation Quaternion `json:"orientation"`
	TorsoHeight float64    `json:"torso_height"`
	Type        string     `json:"type"`
}

// Reference is the untyped view of a Ref used by the schema layer.
// RefValue returns nil when the reference carries no raw value.
type Reference interface {
	RefID() int64
	RefValue() any
}

// Ref points at a value object either by id or by a raw value that
// still has to be inserted. An id takes precedence over a value.
type Ref[T any] struct {
	ID    int64
	Value *T
}

// RefID returns a reference to an already stored value object.
func RefID[T any](id int64) Ref[T] { return Ref[T]{ID: id} }

// RefTo returns a reference to a value object that is not stored yet.
func RefTo[T any](v T) Ref[T] { return Ref[T]{Value: &v} }

func (r Ref[T]) RefID() int64 { return r.ID }

func (r Ref[T]) RefValue() any {
	if r.Value == nil {
		return nil
	}
	return r.Value
}

// IsZero reports whether the reference carries neither an id nor a value.
func (r Ref[T]) IsZero() bool { return r.ID == 0 && r.Value == nil }

// MarshalJSON encodes a resolved reference as its id and an unresolved one
// as the raw value object.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	switch {
	case r.ID != 0:
		return json.Marshal(r.ID)
	case r.Value != nil:
		return json.Marshal(r.Value)
	default:
		return []byte("null"), nil
	}
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = Ref[T]{}
		return nil
	case len(data) > 0 && data[0] == '{':
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*r = Ref[T]{Value: &v}
		return nil
	default:
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("reference must be an id or an object: %w", err)
		}
		*r = Ref[T]{ID: id}
		return nil
	}
}

// storedRef is the reference form produced when decoding a stored row.
type storedRef int64

func (s storedRef) RefID() int64 { return int64(s) }
func (s storedRef) RefValue() any { return nil }

// StoredRef wraps an id read from a reference column.
func StoredRef(id int64) Reference { return storedRef(id) }
