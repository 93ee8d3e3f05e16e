package domain

// Push frame discriminators. Only FrameNotification is consumed; other values
// are reserved for future server-side extension and ignored by the client.
const FrameNotification = "notification"

// Frame is the wire shape of a single inbound push message.
type Frame struct {
	Type         string        `json:"type"`
	Notification *Notification `json:"notification,omitempty"`
}
