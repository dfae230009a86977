package models

import "time"

// PayloadSourceKey and PayloadSourceValue form the namespaced marker stamped
// into every notification this application schedules. Cancel and list
// operations must filter on the marker so notifications owned by anything
// else on the device are never touched.
const (
	PayloadSourceKey   = "source"
	PayloadSourceValue = "folio"
)

// PendingNotification is one scheduled local notification.
type PendingNotification struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Trigger time.Time         `json:"trigger"`
	Payload map[string]string `json:"payload,omitempty"`
}

// Owned reports whether the notification carries this application's marker.
func (n PendingNotification) Owned() bool {
	return n.Payload[PayloadSourceKey] == PayloadSourceValue
}

// MarkOwned stamps the ownership marker into the payload.
func (n *PendingNotification) MarkOwned() {
	if n.Payload == nil {
		n.Payload = make(map[string]string)
	}
	n.Payload[PayloadSourceKey] = PayloadSourceValue
}
