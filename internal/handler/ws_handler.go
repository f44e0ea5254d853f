package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/anooppatell7/education-pixel-backend/internal/middleware"
	"github.com/anooppatell7/education-pixel-backend/internal/model"
	"github.com/anooppatell7/education-pixel-backend/internal/repository"
	"github.com/anooppatell7/education-pixel-backend/internal/service"
	ws "github.com/anooppatell7/education-pixel-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams attempt state over WebSocket: countdown ticks from the
// engine plus request/response handling for answer, review, and submit
// actions on the same connection.
type WSHandler struct {
	attempts      *service.AttemptService
	registrations *repository.RegistrationRepository
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attempts *service.AttemptService, registrations *repository.RegistrationRepository, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attempts:      attempts,
		registrations: registrations,
		log:           log.With().Str("component", "ws_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// wsConn serializes writes; the tick forwarder and the read loop both push
// frames onto the same connection.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) send(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteJSON(v)
}

// AttemptStream godoc
// WS /ws/v1/tests/:test_id/stream?token=...&registration_number=...
// Upgrades to WebSocket for the live attempt: the server pushes a tick
// every second and the client sends answer/review/position/submit actions.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid test ID"})
		return
	}

	kind := model.InformalAttempt()
	if regNo := c.Query("registration_number"); regNo != "" {
		if _, err := h.registrations.GetByNumber(c.Request.Context(), regNo); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, pgx.ErrNoRows) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": "registration not recognized"})
			return
		}
		kind = model.OfficialAttempt(regNo)
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer rawConn.Close()
	conn := &wsConn{conn: rawConn}

	key := h.attempts.Key(testID, claims.Subject, kind)

	state, err := h.attempts.State(key)
	if err != nil {
		ws.WriteError(rawConn, "no attempt in progress for this test")
		return
	}
	conn.send(ws.StateResponse{Event: ws.EventState, State: state})

	events, cancel, err := h.attempts.Subscribe(key)
	if err != nil {
		ws.WriteError(rawConn, "no attempt in progress for this test")
		return
	}
	defer cancel()

	wsLog := h.log.With().
		Str("candidate_id", claims.Subject).
		Str("test_id", testID.String()).
		Logger()
	wsLog.Info().Msg("Candidate connected")

	// Forward engine events until the subscription closes or the
	// connection drops.
	go func() {
		for ev := range events {
			var frame interface{}
			switch ev.Event {
			case service.EventTick:
				frame = ws.TickResponse{Event: ws.EventTick, RemainingSeconds: ev.RemainingSeconds, Expired: ev.Expired}
			case service.EventExpired:
				frame = ws.TickResponse{Event: ws.EventExpired, RemainingSeconds: ev.RemainingSeconds, Expired: true}
			case service.EventSubmitted:
				frame = ws.SubmittedResponse{
					Event:         ws.EventSubmitted,
					ResultID:      ev.ResultID,
					Practice:      ev.Practice,
					AutoSubmitted: ev.AutoSubmitted,
				}
			default:
				continue
			}
			if err := conn.send(frame); err != nil {
				return
			}
		}
	}()

	for {
		rawConn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		_, raw, err := rawConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			conn.send(ws.ErrorResponse{Event: ws.EventError, Error: "invalid message"})
			continue
		}

		switch envelope.Action {
		case ws.ActionAnswer:
			var req ws.AnswerRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				conn.send(ws.ErrorResponse{Event: ws.EventError, Error: "invalid answer payload"})
				continue
			}
			h.replyState(conn, func() (*model.SessionState, error) {
				return h.attempts.SelectAnswer(c.Request.Context(), key, req.QuestionIndex, req.OptionIndex)
			})

		case ws.ActionReview:
			var req ws.ReviewRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				conn.send(ws.ErrorResponse{Event: ws.EventError, Error: "invalid review payload"})
				continue
			}
			h.replyState(conn, func() (*model.SessionState, error) {
				return h.attempts.ToggleReview(c.Request.Context(), key, req.QuestionIndex)
			})

		case ws.ActionPosition:
			var req ws.PositionRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				conn.send(ws.ErrorResponse{Event: ws.EventError, Error: "invalid position payload"})
				continue
			}
			h.replyState(conn, func() (*model.SessionState, error) {
				return h.attempts.Navigate(c.Request.Context(), key, req.QuestionIndex)
			})

		case ws.ActionSubmit:
			if _, err := h.attempts.Submit(c.Request.Context(), key, false); err != nil &&
				!errors.Is(err, service.ErrSubmissionInProgress) {
				conn.send(ws.ErrorResponse{Event: ws.EventError, Error: err.Error()})
			}
			// Success is announced through the subscription's submitted
			// event, so every open tab hears it once.

		case ws.ActionPing:
			conn.send(ws.PongResponse{Event: ws.EventPong})

		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			conn.send(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(envelope.Action)})
		}
	}
}

func (h *WSHandler) replyState(conn *wsConn, mutate func() (*model.SessionState, error)) {
	state, err := mutate()
	if err != nil {
		conn.send(ws.ErrorResponse{Event: ws.EventError, Error: err.Error()})
		return
	}
	conn.send(ws.StateResponse{Event: ws.EventState, State: state})
}
