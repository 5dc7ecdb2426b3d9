package ws

import (
	"github.com/mklatt/ontrack/internal/session"
)

type MessageType string

const (
	// MsgSnapshot carries the full session snapshot. Sent on connect and
	// whenever the monitor renders or completes an assessment.
	MsgSnapshot MessageType = "snapshot"
)

type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
}

type SnapshotPayload struct {
	Session session.Snapshot `json:"session"`
}
