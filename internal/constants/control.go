package constants

// Control actions accepted by the control service.
const (
	ActionDetect     = "detect"
	ActionSetTarget  = "set_target"
	ActionSetRadius  = "set_radius"
	ActionStart      = "start"
	ActionStop       = "stop"
	ActionSilence    = "silence"
	ActionBackground = "background"
	ActionForeground = "foreground"
	ActionStatus     = "status"
)

// Control response statuses
const (
	// ControlStatusOK indicates that the action was applied
	ControlStatusOK = "ok"
	// ControlStatusError indicates that the action was rejected
	ControlStatusError = "error"
)

// ResponseTopicSuffix is appended to a device scoped topic for replies.
const ResponseTopicSuffix = "/response"
