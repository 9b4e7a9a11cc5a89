// Package action defines the robot action hierarchy and the registry that
// maps each action kind onto its own table.
//
// Every action shares a Base (id and robot state). Each kind adds its own
// scalar fields and references to value objects. Kinds are dispatched by
// their discriminator tag through a Registry, never by type inspection.
package action

// Kind is the discriminator stored with every action row.
type Kind string

const (
	KindParkArms   Kind = "ParkArms"
	KindNavigate   Kind = "Navigate"
	KindMoveTorso  Kind = "MoveTorso"
	KindSetGripper Kind = "SetGripper"
	KindRelease    Kind = "Release"
	KindGrip       Kind = "Grip"
	KindPickUp     Kind = "PickUp"
	KindPlace      Kind = "Place"
	KindTransport  Kind = "Transport"
	KindLookAt     Kind = "LookAt"
	KindDetect     Kind = "Detect"
	KindOpen       Kind = "Open"
	KindClose      Kind = "Close"
)

// Action is implemented by a pointer to every variant struct.
type Action interface {
	Kind() Kind
	Header() *Base
}

// Base holds the columns every action has.
type Base struct {
	ID         int64           `json:"id,omitempty"`
	RobotState Ref[RobotState] `json:"robot_state"`
}

// Header gives access to the shared columns of any variant.
func (b *Base) Header() *Base { return b }

// Arms selects which arm(s) to park.
type Arms string

const (
	ArmLeft  Arms = "left"
	ArmRight Arms = "right"
	ArmBoth  Arms = "both"
)

// Valid reports whether a is one of the known arm selections.
func (a Arms) Valid() bool {
	switch a {
	case ArmLeft, ArmRight, ArmBoth:
		return true
	}
	return false
}

type ParkArms struct {
	Base
	Arm Arms `json:"arm"`
}

type Navigate struct {
	Base
	Position    Ref[Position]   `json:"position"`
	Orientation Ref[Quaternion] `json:"orientation"`
}

// MoveTorso moves the torso to Position; nil leaves the height unset.
type MoveTorso struct {
	Base
	Position *float64 `json:"position"`
}

type SetGripper struct {
	Base
	Gripper string `json:"gripper"`
	Motion  string `json:"motion"`
}

type Release struct {
	Base
	Gripper string                `json:"gripper"`
	Object  Ref[ObjectDesignator] `json:"object"`
}

type Grip struct {
	Base
	Gripper string                `json:"gripper"`
	Effort  float64               `json:"effort"`
	Object  Ref[ObjectDesignator] `json:"object"`
}

type PickUp struct {
	Base
	Arm    string                `json:"arm"`
	Grasp  string                `json:"grasp"`
	Object Ref[ObjectDesignator] `json:"object"`
}

type Place struct {
	Base
	Arm         string                `json:"arm"`
	Position    Ref[Position]         `json:"position"`
	Orientation Ref[Quaternion]       `json:"orientation"`
	Object      Ref[ObjectDesignator] `json:"object"`
}

type Transport struct {
	Base
	Arm         string                `json:"arm"`
	Position    Ref[Position]         `json:"position"`
	Orientation Ref[Quaternion]       `json:"orientation"`
	Object      Ref[ObjectDesignator] `json:"object"`
}

type LookAt struct {
	Base
	Position Ref[Position] `json:"position"`
}

type Detect struct {
	Base
	Object Ref[ObjectDesignator] `json:"object"`
}

type Open struct {
	Base
	Arm      string                `json:"arm"`
	Distance float64               `json:"distance"`
	Object   Ref[ObjectDesignator] `json:"object"`
}

type Close struct {
	Base
	Arm string `json:"arm"`
}

func (*ParkArms) Kind() Kind   { return KindParkArms }
func (*Navigate) Kind() Kind   { return KindNavigate }
func (*MoveTorso) Kind() Kind  { return KindMoveTorso }
func (*SetGripper) Kind() Kind { return KindSetGripper }
func (*Release) Kind() Kind    { return KindRelease }
func (*Grip) Kind() Kind       { return KindGrip }
func (*PickUp) Kind() Kind     { return KindPickUp }
func (*Place) Kind() Kind      { return KindPlace }
func (*Transport) Kind() Kind  { return KindTransport }
func (*LookAt) Kind() Kind     { return KindLookAt }
func (*Detect) Kind() Kind     { return KindDetect }
func (*Open) Kind() Kind       { return KindOpen }
func (*Close) Kind() Kind      { return KindClose }
