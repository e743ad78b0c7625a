package models

// ControlCommand is a request received on the control topic.
type ControlCommand struct {
	RequestID string   `json:"request_id,omitempty"`
	Action    string   `json:"action"`
	Name      string   `json:"name,omitempty"`      // Target name for set_target
	Latitude  *float64 `json:"latitude,omitempty"`  // Explicit target; omitted means the detected position
	Longitude *float64 `json:"longitude,omitempty"` // Explicit target; omitted means the detected position
	Radius    int      `json:"radius,omitempty"`    // New radius for set_radius
}

// ControlResponse is published on the response topic for every command.
type ControlResponse struct {
	RequestID string    `json:"request_id,omitempty"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Position  *Position `json:"position,omitempty"` // Detected position for detect
	Result    *Status   `json:"result,omitempty"`
}
