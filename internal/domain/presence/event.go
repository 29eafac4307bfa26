// Package presence owns the registry of live connections and the fan-out of
// real-time events. Delivery is at-most-once and best-effort: recipients
// without an open connection are skipped, and a slow connection drops the
// event rather than blocking the sender.
package presence

// Event kinds. Type is the stable discriminant clients switch on.
const (
	EventNewMessage   = "new_message"
	EventTyping       = "typing"
	EventReadReceipt  = "read_receipt"
	EventCallIncoming = "call_incoming"
	EventCallAccepted = "call_accepted"
	EventCallEnded    = "call_ended"
	EventCallSignal   = "call_signal"
	EventPresence     = "presence"
)

// Event is a tagged real-time payload pushed to connected clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// PresenceData is the payload of a presence-change event.
type PresenceData struct {
	IdentityID int64 `json:"identity_id"`
	IsOnline   bool  `json:"is_online"`
}

// TypingData is the payload of a typing indicator.
type TypingData struct {
	ConversationID int64 `json:"conversation_id"`
	IdentityID     int64 `json:"identity_id"`
}

// ReadReceiptData is the payload of a read receipt.
type ReadReceiptData struct {
	ConversationID int64 `json:"conversation_id"`
	MessageID      int64 `json:"message_id"`
	IdentityID     int64 `json:"identity_id"`
}

// CallData is the payload of the call signaling events. Signal carries the
// opaque SDP/ICE blob and is never interpreted by the server.
type CallData struct {
	FromIdentityID int64  `json:"from_identity_id"`
	ToIdentityID   int64  `json:"to_identity_id"`
	CallType       string `json:"call_type,omitempty"`
	Signal         any    `json:"signal,omitempty"`
}
