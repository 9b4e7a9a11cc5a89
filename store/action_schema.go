package store

import (
	"fmt"
	"strings"

	"pycramdb/action"
)

// valueTables maps each value kind onto the table that stores it.
var valueTables = map[action.ValueKind]string{
	action.ValuePosition:   "positions",
	action.ValueQuaternion: "quaternions",
	action.ValueObject:     "objects",
	action.ValueRobotState: "robot_states",
}

// variantDDL builds the CREATE TABLE statement for one action kind. The id
// column is both the primary key and the foreign key into actions.
func variantDDL(d Dialect, v *action.Variant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nCREATE TABLE IF NOT EXISTS %s (\n", v.Table)
	fmt.Fprintf(&b, "    id %s PRIMARY KEY REFERENCES actions(id) ON DELETE CASCADE", d.IntegerType())
	for _, f := range v.Fields {
		fmt.Fprintf(&b, ",\n    %s %s", f.Column, columnDef(d, f))
	}
	b.WriteString("\n);\n")
	for _, f := range v.Fields {
		if f.Type == action.FieldRef {
			fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s);\n", v.Table, f.Column, v.Table, f.Column)
		}
	}
	return b.String()
}

func columnDef(d Dialect, f action.Field) string {
	var def string
	switch f.Type {
	case action.FieldFloat:
		def = d.FloatType()
	case action.FieldRef:
		def = d.IntegerType()
	default:
		def = "TEXT"
	}
	if !f.Nullable {
		def += " NOT NULL"
	}
	switch f.Type {
	case action.FieldRef:
		def += fmt.Sprintf(" REFERENCES %s(id)", valueTables[f.Target])
	case action.FieldArm:
		def += fmt.Sprintf(" CHECK (%s IN ('%s', '%s', '%s'))", f.Column, action.ArmLeft, action.ArmRight, action.ArmBoth)
	}
	return def
}
