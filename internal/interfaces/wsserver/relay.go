package wsserver

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/conversation"
	"campus-chat/chat-api/internal/domain/presence"
)

// inboundFrame is a client-to-server real-time frame. These are relayed
// without persistence: sender-authenticated, minimally validated, forwarded.
type inboundFrame struct {
	Type           string          `json:"type"`
	ConversationID int64           `json:"conversation_id,omitempty"`
	TargetID       int64           `json:"target_id,omitempty"`
	CallType       string          `json:"call_type,omitempty"`
	Signal         json.RawMessage `json:"signal,omitempty"`
}

// Relay forwards typing indicators and call signaling between connected
// clients.
type Relay struct {
	convs *conversation.Store
	hub   *presence.Hub
	log   zerolog.Logger
}

// NewRelay creates the real-time frame relay.
func NewRelay(convs *conversation.Store, hub *presence.Hub, log zerolog.Logger) *Relay {
	return &Relay{
		convs: convs,
		hub:   hub,
		log:   log.With().Str("component", "ws-relay").Logger(),
	}
}

// Handle processes one inbound frame from senderID. Malformed frames are
// dropped with a warning; the connection stays open.
func (r *Relay) Handle(ctx context.Context, senderID int64, raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		r.log.Warn().Int64("identity_id", senderID).Msg("dropping malformed realtime frame")
		return
	}

	switch frame.Type {
	case "typing":
		r.typing(ctx, senderID, frame)
	case "call_request":
		r.unicast(senderID, frame, presence.EventCallIncoming)
	case "call_accept":
		r.unicast(senderID, frame, presence.EventCallAccepted)
	case "call_end":
		r.unicast(senderID, frame, presence.EventCallEnded)
	case "call_signal":
		r.unicast(senderID, frame, presence.EventCallSignal)
	default:
		r.log.Warn().Int64("identity_id", senderID).Str("frame_type", frame.Type).Msg("dropping unknown realtime frame")
	}
}

// typing fans the indicator out to the other participants of the
// conversation, never back to the sender.
func (r *Relay) typing(ctx context.Context, senderID int64, frame inboundFrame) {
	if frame.ConversationID == 0 {
		r.log.Warn().Int64("identity_id", senderID).Msg("dropping typing frame without conversation")
		return
	}
	member, err := r.convs.Membership(ctx, frame.ConversationID, senderID)
	if err != nil || member == nil {
		r.log.Warn().Int64("identity_id", senderID).Int64("conversation_id", frame.ConversationID).Msg("dropping typing frame from non-participant")
		return
	}
	ids, err := r.convs.ParticipantIDs(ctx, frame.ConversationID)
	if err != nil {
		r.log.Warn().Err(err).Int64("conversation_id", frame.ConversationID).Msg("failed to load typing recipients")
		return
	}
	others := ids[:0:0]
	for _, id := range ids {
		if id != senderID {
			others = append(others, id)
		}
	}
	r.hub.Notify(others, presence.Event{
		Type: presence.EventTyping,
		Data: presence.TypingData{ConversationID: frame.ConversationID, IdentityID: senderID},
	})
}

// unicast delivers a call event to the named target only, never broadcast.
func (r *Relay) unicast(senderID int64, frame inboundFrame, eventType string) {
	if frame.TargetID == 0 {
		r.log.Warn().Int64("identity_id", senderID).Str("frame_type", frame.Type).Msg("dropping call frame without target")
		return
	}
	var signal any
	if len(frame.Signal) > 0 {
		signal = json.RawMessage(frame.Signal)
	}
	r.hub.Notify([]int64{frame.TargetID}, presence.Event{
		Type: eventType,
		Data: presence.CallData{
			FromIdentityID: senderID,
			ToIdentityID:   frame.TargetID,
			CallType:       frame.CallType,
			Signal:         signal,
		},
	})
}
