package wsserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/presence"
	"campus-chat/chat-api/internal/infrastructure/auth"
	"campus-chat/chat-api/internal/infrastructure/metrics"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

// Handler upgrades authenticated requests to websocket connections and runs
// their pumps against the presence hub.
type Handler struct {
	hub       *presence.Hub
	relay     *Relay
	validator *auth.Validator
	upgrader  websocket.Upgrader
	buffer    int
	log       zerolog.Logger
}

// NewHandler creates the websocket endpoint. allowedOrigins is the Origin
// allow-list; an empty list accepts any origin.
func NewHandler(hub *presence.Hub, relay *Relay, validator *auth.Validator, buffer int, allowedOrigins []string, log zerolog.Logger) *Handler {
	h := &Handler{
		hub:       hub,
		relay:     relay,
		validator: validator,
		buffer:    buffer,
		log:       log.With().Str("component", "ws-handler").Logger(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Serve is the GET /ws handler. Browsers cannot set headers on websocket
// requests, so the token arrives as a query parameter.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		platformerrors.WriteUnauthorized(c, "missing token")
		return
	}
	claims, err := h.validator.Parse(token)
	if err != nil {
		platformerrors.WriteUnauthorized(c, "invalid token")
		return
	}
	principal := h.validator.Principal(c, claims)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.Warn().Err(err).Int64("identity_id", principal.ID).Msg("websocket upgrade failed")
		return
	}

	client := newClient(principal.ID, conn, h.buffer, h.log)
	ctx := c.Request.Context()

	h.hub.Register(ctx, principal.ID, client)
	metrics.ActiveConnections.Inc()
	defer func() {
		h.hub.Unregister(ctx, principal.ID, client)
		metrics.ActiveConnections.Dec()
		client.Close()
	}()

	go client.writePump()
	client.readPump(h.hub, func(raw []byte) {
		h.relay.Handle(ctx, principal.ID, raw)
	})
}
