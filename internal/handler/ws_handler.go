package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/middleware"
	"github.com/talentflow/talentflow-backend/internal/response"
	"github.com/talentflow/talentflow-backend/internal/service"
	"github.com/talentflow/talentflow-backend/internal/taker"
	ws "github.com/talentflow/talentflow-backend/internal/websocket"
)

// submitTimeout bounds the synchronous submit write.
const submitTimeout = 10 * time.Second

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

// WSHandler runs the candidate-facing taker over a WebSocket.
type WSHandler struct {
	assessmentService *service.AssessmentService
	responseService   *service.ResponseService
	autosaveDelay     time.Duration
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	assessmentService *service.AssessmentService,
	responseService *service.ResponseService,
	autosaveDelay time.Duration,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		assessmentService: assessmentService,
		responseService:   responseService,
		autosaveDelay:     autosaveDelay,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// TakeAssessment godoc
// WS /ws/v1/assessments/:id/take?token=...
// Streams one candidate's attempt: answers are autosaved as drafts after a
// quiet period and submit is terminal.
func (h *WSHandler) TakeAssessment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	a, err := h.assessmentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	candidateID := claims.Subject
	wsLog := h.log.With().
		Str("assessment_id", a.ID).
		Str("candidate_id", candidateID).
		Logger()

	store := taker.NewStore(taker.Options{
		Persistence: h.responseService,
		Delay:       h.autosaveDelay,
		Logger:      wsLog,
	})
	defer func() {
		if store.Flush() {
			wsLog.Debug().Msg("Pending draft flushed on close")
		}
		store.Reset()
	}()

	if err := store.LoadExisting(c.Request.Context(), a, candidateID); err != nil {
		wsLog.Error().Err(err).Msg("Loading saved answers failed")
		ws.WriteError(conn, string(response.ErrPersistenceFailure), "saved answers could not be loaded")
		return
	}
	rt := taker.NewRuntime(store, taker.ModeTaker)

	wsLog.Info().Bool("submitted", store.Submitted()).Msg("Candidate connected")
	h.writeState(conn, rt)

	for {
		data, err := ws.ReadMessage(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var env ws.RequestEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			ws.WriteError(conn, string(response.ErrInvalidPayload), "invalid message")
			continue
		}

		switch env.Action {
		case ws.ActionAnswer:
			h.handleAnswer(conn, rt, data)
		case ws.ActionNext:
			rt.Next()
			h.writeState(conn, rt)
		case ws.ActionPrevious:
			rt.Previous()
			h.writeState(conn, rt)
		case ws.ActionSubmit:
			h.handleSubmit(conn, wsLog, rt)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
			ws.WriteError(conn, string(response.ErrInvalidPayload), "unknown action: "+string(env.Action))
		}
	}
}

// handleAnswer records one answer and schedules the draft autosave.
func (h *WSHandler) handleAnswer(conn *websocket.Conn, rt *taker.Runtime, data []byte) {
	var msg ws.AnswerRequest
	if err := json.Unmarshal(data, &msg); err != nil || msg.QID == "" {
		ws.WriteError(conn, string(response.ErrInvalidPayload), "q_id and value are required")
		return
	}

	if err := rt.Answer(msg.QID, msg.Value); err != nil {
		switch {
		case errors.Is(err, taker.ErrAlreadySubmitted):
			ws.WriteError(conn, string(response.ErrResponseSubmitted), err.Error())
		case errors.Is(err, taker.ErrUnknownQuestion):
			ws.WriteError(conn, string(response.ErrNotFound), err.Error())
		default:
			ws.WriteError(conn, string(response.ErrInternal), err.Error())
		}
		return
	}
	h.writeState(conn, rt)
}

// handleSubmit validates every visible question and persists the response.
func (h *WSHandler) handleSubmit(conn *websocket.Conn, wsLog zerolog.Logger, rt *taker.Runtime) {
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	id, err := rt.Submit(ctx)
	if err != nil {
		var fieldErr *assessment.FieldErrors
		switch {
		case errors.As(err, &fieldErr):
			ws.WriteTyped(conn, ws.ErrorsResponse{Event: ws.EventErrors, Errors: fieldErr.Errors})
		case errors.Is(err, taker.ErrNotLastSection):
			ws.WriteError(conn, string(response.ErrValidation), err.Error())
		case errors.Is(err, taker.ErrAlreadySubmitted), errors.Is(err, service.ErrResponseSubmitted):
			ws.WriteError(conn, string(response.ErrResponseSubmitted), "response already submitted")
		default:
			wsLog.Error().Err(err).Msg("Submit failed")
			ws.WriteError(conn, string(response.ErrPersistenceFailure), "submission could not be saved, please retry")
		}
		return
	}

	wsLog.Info().Str("response_id", id).Msg("Assessment submitted")
	ws.WriteTyped(conn, ws.SubmittedResponse{Event: ws.EventSubmitted, ResponseID: id})
	h.writeState(conn, rt)
}

func (h *WSHandler) writeState(conn *websocket.Conn, rt *taker.Runtime) {
	ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: rt.View()})
}
