package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ideameet/backend/internal/auth"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/metrics"
	"github.com/ideameet/backend/internal/service"
	"github.com/ideameet/backend/lib/logger/sl"
)

const clientSendBuffer = 64

// Envelope is the frame format in both directions: an event name plus
// event-specific data.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type client struct {
	wsID   string
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan outboundFrame
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// Gateway owns the socket connections and is the Pusher the services fan
// out through. One goroutine per client drains the send channel; a full
// channel drops the frame rather than block the sender.
type Gateway struct {
	log      *slog.Logger
	tokens   *auth.TokenManager
	presence *service.PresenceService
	calls    service.CallInteractor
	messages service.MessageInteractor
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

func NewGateway(
	log *slog.Logger,
	tokens *auth.TokenManager,
	presence *service.PresenceService,
	calls service.CallInteractor,
	messages service.MessageInteractor,
) *Gateway {
	return &Gateway{
		log:      log,
		tokens:   tokens,
		presence: presence,
		calls:    calls,
		messages: messages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[string]*client),
	}
}

// Push implements service.Pusher. The lock is held across the send so an
// unregister cannot close the channel mid-push; the send itself never
// blocks.
func (g *Gateway) Push(wsID string, event string, payload any) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cl, ok := g.clients[wsID]
	if !ok {
		return
	}

	select {
	case cl.send <- outboundFrame{Event: event, Data: payload}:
	default:
		g.log.Warn("dropping event for slow client",
			slog.String("ws_id", wsID),
			slog.String("event", event),
		)
	}
}

// Connect upgrades the request to a websocket and runs the session until the
// client goes away.
func (g *Gateway) Connect(ctx *gin.Context) {
	tokenStr := auth.TokenFromRequest(ctx.Request)
	if tokenStr == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	claims, err := g.tokens.ParseAccessToken(tokenStr)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := g.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to upgrade connection")
		return
	}

	cl := &client{
		wsID:   uuid.NewString(),
		userID: claims.UserID,
		conn:   conn,
		send:   make(chan outboundFrame, clientSendBuffer),
	}

	g.mu.Lock()
	g.clients[cl.wsID] = cl
	g.mu.Unlock()
	metrics.WsConnections.Inc()

	go cl.writePump()

	if err := g.presence.Connect(context.Background(), cl.userID, cl.wsID); err != nil {
		g.unregister(cl)
		return
	}

	g.readLoop(cl)

	g.calls.HandleDisconnect(context.Background(), cl.userID)
	if err := g.presence.Disconnect(context.Background(), cl.userID, cl.wsID); err != nil {
		g.log.Error("failed to release presence", sl.Err(err))
	}
	g.unregister(cl)
}

func (g *Gateway) unregister(cl *client) {
	g.mu.Lock()
	_, present := g.clients[cl.wsID]
	delete(g.clients, cl.wsID)
	g.mu.Unlock()
	if present {
		metrics.WsConnections.Dec()
	}
	cl.close()
}

func (cl *client) writePump() {
	for frame := range cl.send {
		if err := cl.conn.WriteJSON(frame); err != nil {
			return
		}
	}
}

func (g *Gateway) readLoop(cl *client) {
	for {
		var env Envelope
		if err := cl.conn.ReadJSON(&env); err != nil {
			return
		}
		metrics.WsEventsTotal.WithLabelValues(env.Event).Inc()
		if err := g.dispatch(cl, &env); err != nil {
			g.Push(cl.wsID, "error", gin.H{"status": "error", "error": err.Error(), "event": env.Event})
		}
	}
}

var errUnknownEvent = errors.New("unknown event")

func (g *Gateway) dispatch(cl *client, env *Envelope) error {
	ctx := context.Background()

	switch env.Event {
	case domain.EventCreateDirectMessage:
		req, err := decodeCreateMessage(env.Data)
		if err != nil {
			return err
		}
		_, err = g.messages.CreateDirectMessage(ctx, cl.userID, req.channelID, req.msgType, req.value)
		return err

	case domain.EventCreateGroupMessage:
		req, err := decodeCreateMessage(env.Data)
		if err != nil {
			return err
		}
		_, err = g.messages.CreateGroupMessage(ctx, cl.userID, req.channelID, req.msgType, req.value)
		return err

	case domain.EventDeleteDirectMessage:
		id, err := decodeMessageID(env.Data)
		if err != nil {
			return err
		}
		return g.messages.DeleteDirectMessage(ctx, cl.userID, id)

	case domain.EventDeleteGroupMessage:
		id, err := decodeMessageID(env.Data)
		if err != nil {
			return err
		}
		return g.messages.DeleteGroupMessage(ctx, cl.userID, id)

	case domain.EventRequestCall:
		var payload struct {
			ToUserID string `json:"toUserId"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return errors.New("invalid payload")
		}
		calleeID, err := uuid.Parse(payload.ToUserID)
		if err != nil {
			return errors.New("invalid user id")
		}
		_, err = g.calls.RequestCall(ctx, cl.userID, calleeID)
		return err

	case domain.EventAcceptRequestCall:
		_, err := g.calls.AcceptCall(ctx, cl.userID)
		return err

	case domain.EventCancelCall:
		return g.calls.CancelCall(ctx, cl.userID)

	case domain.EventCallSignal:
		var signal domain.CallSignal
		if err := json.Unmarshal(env.Data, &signal); err != nil {
			return errors.New("invalid payload")
		}
		return g.calls.RelaySignal(ctx, cl.userID, &signal)
	}

	return errUnknownEvent
}

type createMessageRequest struct {
	channelID uuid.UUID
	msgType   domain.MessageType
	value     string
}

func decodeCreateMessage(raw json.RawMessage) (*createMessageRequest, error) {
	var payload struct {
		ChannelID string `json:"channelId"`
		Type      string `json:"type"`
		Value     string `json:"value"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.New("invalid payload")
	}
	channelID, err := uuid.Parse(payload.ChannelID)
	if err != nil {
		return nil, errors.New("invalid channel id")
	}
	if payload.Value == "" {
		return nil, errors.New("value is required")
	}

	msgType := domain.MessageType(payload.Type)
	switch msgType {
	case domain.MessageTypeText, domain.MessageTypeImage:
	case "":
		msgType = domain.MessageTypeText
	default:
		return nil, errors.New("invalid message type")
	}

	return &createMessageRequest{channelID: channelID, msgType: msgType, value: payload.Value}, nil
}

func decodeMessageID(raw json.RawMessage) (uuid.UUID, error) {
	var payload struct {
		MessageID string `json:"messageId"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return uuid.Nil, errors.New("invalid payload")
	}
	id, err := uuid.Parse(payload.MessageID)
	if err != nil {
		return uuid.Nil, errors.New("invalid message id")
	}
	return id, nil
}
