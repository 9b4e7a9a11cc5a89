package protocol

// Message type constants for action events.
const (
	TypeActionRecorded = "action.recorded"
	TypeActionDeleted  = "action.deleted"
)

// Protocol version.
const Version = 1
