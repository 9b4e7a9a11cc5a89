package action

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MarshalJSON encodes a as a flat JSON object carrying its "kind".
func MarshalJSON(a Action) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	kind, err := json.Marshal(a.Kind())
	if err != nil {
		return nil, err
	}
	obj["kind"] = kind
	return json.Marshal(obj)
}

// UnmarshalJSON decodes a flat JSON action, dispatching on its "kind" key.
// Keys the kind does not declare, and declared non-nullable keys that are
// absent, fail with *SchemaMismatchError.
func UnmarshalJSON(reg *Registry, data []byte) (Action, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	rawKind, ok := obj["kind"]
	if !ok {
		return nil, &SchemaMismatchError{Field: "kind", Reason: "missing"}
	}
	var kind Kind
	if err := json.Unmarshal(rawKind, &kind); err != nil {
		return nil, &SchemaMismatchError{Field: "kind", Reason: err.Error()}
	}
	v, err := reg.Lookup(kind)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case "kind", "id", "robot_state":
			continue
		}
		if _, ok := v.Field(k); !ok {
			return nil, mismatch(kind, k, "unexpected field")
		}
	}
	if _, ok := obj["robot_state"]; !ok {
		return nil, mismatch(kind, "robot_state", "missing")
	}
	for _, f := range v.Fields {
		if _, ok := obj[f.Name]; !ok && !f.Nullable {
			return nil, mismatch(kind, f.Name, "missing")
		}
	}

	a := v.New()
	if err := json.Unmarshal(data, a); err != nil {
		return nil, mismatch(kind, "", "%v", err)
	}
	return a, nil
}
