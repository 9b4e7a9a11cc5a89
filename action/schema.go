package action

import (
	"math"
	"sort"
)

// FieldType is the storage shape of a variant column.
type FieldType int

const (
	FieldString FieldType = iota
	FieldFloat
	FieldArm
	FieldRef
)

func (t FieldType) String() string {
	switch t {
	case FieldString:
		return "string"
	case FieldFloat:
		return "float"
	case FieldArm:
		return "arm"
	case FieldRef:
		return "ref"
	}
	return "unknown"
}

func (t FieldType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Field declares one column of a variant table.
type Field struct {
	Name     string    `json:"name"`
	Column   string    `json:"column"`
	Type     FieldType `json:"type"`
	Target   ValueKind `json:"target,omitempty"`
	Nullable bool      `json:"nullable,omitempty"`
}

func stringField(name string) Field { return Field{Name: name, Column: name, Type: FieldString} }
func floatField(name string) Field  { return Field{Name: name, Column: name, Type: FieldFloat} }
func armField(name string) Field    { return Field{Name: name, Column: name, Type: FieldArm} }

func nullableFloatField(name string) Field {
	return Field{Name: name, Column: name, Type: FieldFloat, Nullable: true}
}

func refField(name string, target ValueKind) Field {
	return Field{Name: name, Column: name + "_id", Type: FieldRef, Target: target}
}

// Record carries the variant columns of one action keyed by field name.
// Scalar fields hold string, float64, *float64 or Arms; reference fields
// hold a Reference.
type Record map[string]any

func (r Record) String(name string) string {
	s, _ := r[name].(string)
	return s
}

func (r Record) Float(name string) float64 {
	f, _ := r[name].(float64)
	return f
}

func (r Record) FloatPtr(name string) *float64 {
	switch v := r[name].(type) {
	case float64:
		return &v
	case *float64:
		return v
	}
	return nil
}

func (r Record) Arm(name string) Arms {
	switch v := r[name].(type) {
	case Arms:
		return v
	case string:
		return Arms(v)
	}
	return ""
}

func refOf[T any](r Record, name string) Ref[T] {
	ref, ok := r[name].(Reference)
	if !ok {
		return Ref[T]{}
	}
	out := Ref[T]{ID: ref.RefID()}
	if v, ok := ref.RefValue().(*T); ok {
		out.Value = v
	}
	return out
}

// Variant is the registered schema of one action kind together with the
// functions that move it between its struct and its table row.
type Variant struct {
	Kind   Kind
	Table  string
	Fields []Field

	New    func() Action
	Encode func(Action) (Record, error)
	Decode func(Base, Record) Action
}

// Field looks up a declared field by name.
func (v *Variant) Field(name string) (Field, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Columns returns the variant table columns, without id, in declaration order.
func (v *Variant) Columns() []string {
	cols := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		cols[i] = f.Column
	}
	return cols
}

// Prepare encodes a and checks the result against the declared fields.
// Nothing is written when Prepare fails.
func (v *Variant) Prepare(a Action) (Record, error) {
	if a == nil {
		return nil, mismatch(v.Kind, "", "nil action")
	}
	if a.Kind() != v.Kind {
		return nil, mismatch(v.Kind, "", "got a %s action", a.Kind())
	}
	if a.Header().RobotState.IsZero() {
		return nil, mismatch(v.Kind, "robot_state", "reference not set")
	}
	rec, err := v.Encode(a)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate checks that rec holds exactly the declared fields with values
// of the declared types.
func (v *Variant) Validate(rec Record) error {
	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := v.Field(name); !ok {
			return mismatch(v.Kind, name, "unexpected field")
		}
	}

	for _, f := range v.Fields {
		val, ok := rec[f.Name]
		if !ok {
			return mismatch(v.Kind, f.Name, "missing")
		}
		if err := v.checkValue(f, val); err != nil {
			return err
		}
	}
	return nil
}

func (v *Variant) checkValue(f Field, val any) error {
	if val == nil {
		if f.Nullable {
			return nil
		}
		return mismatch(v.Kind, f.Name, "must not be null")
	}
	switch f.Type {
	case FieldString:
		s, ok := val.(string)
		if !ok {
			return mismatch(v.Kind, f.Name, "want string, got %T", val)
		}
		if s == "" && !f.Nullable {
			return mismatch(v.Kind, f.Name, "must not be empty")
		}
	case FieldFloat:
		var x float64
		switch n := val.(type) {
		case float64:
			x = n
		case *float64:
			if n == nil {
				if f.Nullable {
					return nil
				}
				return mismatch(v.Kind, f.Name, "must not be null")
			}
			x = *n
		default:
			return mismatch(v.Kind, f.Name, "want float, got %T", val)
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return mismatch(v.Kind, f.Name, "not a finite number")
		}
	case FieldArm:
		a, ok := val.(Arms)
		if !ok {
			return mismatch(v.Kind, f.Name, "want arm, got %T", val)
		}
		if !a.Valid() {
			return mismatch(v.Kind, f.Name, "unknown arm %q", a)
		}
	case FieldRef:
		ref, ok := val.(Reference)
		if !ok {
			return mismatch(v.Kind, f.Name, "want reference, got %T", val)
		}
		if ref.RefID() < 0 {
			return mismatch(v.Kind, f.Name, "invalid id %d", ref.RefID())
		}
		if ref.RefID() == 0 && ref.RefValue() == nil && !f.Nullable {
			return mismatch(v.Kind, f.Name, "reference not set")
		}
	}
	return nil
}
