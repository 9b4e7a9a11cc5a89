package protocol

// ActionRecorded is published once an action and its kind row are committed.
type ActionRecorded struct {
	ActionID     int64  `json:"action_id"`
	Kind         string `json:"kind"`
	RobotStateID int64  `json:"robot_state_id"`
}

// ActionDeleted is published once an action has been removed.
type ActionDeleted struct {
	ActionID int64  `json:"action_id"`
	Kind     string `json:"kind"`
}
