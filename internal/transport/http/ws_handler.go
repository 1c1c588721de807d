package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mscript-quiz-client/internal/app"
	"mscript-quiz-client/internal/domain"
	"mscript-quiz-client/internal/render"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler bridges a UI surface to the attempt state machine over a
// websocket: discrete UI events in, rendered views and timer ticks out. All
// inbound events funnel into the attempt's mutex-serialized methods, which
// preserves the run-to-completion event model the session logic assumes.
type WSHandler struct {
	attempt   *app.Attempt
	logoutURL string
	baseCtx   context.Context
	upgrader  websocket.Upgrader
	log       *zap.Logger
}

// NewWSHandler wires a handler to one attempt. baseCtx bounds the grading
// request so a dropped connection does not cancel an in-flight submission.
func NewWSHandler(baseCtx context.Context, attempt *app.Attempt, logoutURL string, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		attempt:   attempt,
		logoutURL: logoutURL,
		baseCtx:   baseCtx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuestionID string `json:"questionId"`
	Option     string `json:"option"`
	Selected   bool   `json:"selected"`
}

type navPayload struct {
	Direction string `json:"direction"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type tickPayload struct {
	Remaining int    `json:"remaining"`
	Display   string `json:"display"`
	Warning   bool   `json:"warning"`
}

type statePayload struct {
	Phase         string `json:"phase"`
	Guard         bool   `json:"guard"`
	QuestionCount int    `json:"questionCount"`
}

type expiredPayload struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

type failedPayload struct {
	Message string `json:"message"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs the event bridge until the peer
// disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := h.attempt.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				for _, msg := range h.translate(ev) {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(inbound, send)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(inbound inboundMessage, send chan outboundMessage[any]) {
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid select payload")
			return
		}
		h.attempt.Select(payload.QuestionID, payload.Option, payload.Selected)
	case "nav":
		var payload navPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid nav payload")
			return
		}
		switch payload.Direction {
		case "prev":
			h.attempt.Prev()
		case "next":
			h.attempt.Next()
		default:
			send <- errorMessage("unsupported nav direction")
		}
	case "submit":
		// The grading call can block for the full client timeout; keep the
		// read loop responsive while it is pending. Duplicate triggers are
		// rejected by the submitted latch inside the attempt.
		go func() {
			if err := h.attempt.Submit(h.baseCtx); err != nil && !errors.Is(err, domain.ErrAlreadySubmitted) {
				h.log.Warn("submit failed", zap.Error(err))
			}
		}()
	case "retry":
		go func() {
			if err := h.attempt.Retry(h.baseCtx); err != nil {
				h.log.Warn("retry rejected", zap.Error(err))
			}
		}()
	default:
		send <- errorMessage("unsupported message type")
	}
}

// translate maps one attempt event to the outbound messages it implies.
func (h *WSHandler) translate(ev app.Event) []outboundMessage[any] {
	switch ev.Kind {
	case app.EventTick:
		return []outboundMessage[any]{{Type: "tick", Payload: tickPayload{
			Remaining: ev.Remaining,
			Display:   app.FormatClock(ev.Remaining),
			Warning:   ev.Warning,
		}}}
	case app.EventView:
		msgs := []outboundMessage[any]{
			{Type: "question", Payload: h.questionView()},
			{Type: "state", Payload: h.stateView()},
		}
		// A late subscriber to an already graded attempt still gets the
		// review view.
		if result, ok := h.attempt.Result(); ok {
			msgs = append(msgs, outboundMessage[any]{Type: "graded", Payload: render.Results(result)})
		}
		return msgs
	case app.EventGraded:
		return []outboundMessage[any]{
			{Type: "graded", Payload: render.Results(*ev.Result)},
			{Type: "state", Payload: h.stateView()},
		}
	case app.EventExpired:
		return []outboundMessage[any]{{Type: "expired", Payload: expiredPayload{
			Message:  "Your session has expired. Please log in again.",
			Redirect: h.logoutURL,
		}}}
	case app.EventSubmitFailed:
		return []outboundMessage[any]{
			{Type: "submitFailed", Payload: failedPayload{
				Message: "Failed to submit quiz. Please try again.",
			}},
			{Type: "state", Payload: h.stateView()},
		}
	default:
		return nil
	}
}

func (h *WSHandler) questionView() render.QuestionView {
	q, index := h.attempt.Current()
	return render.Question(
		q,
		h.attempt.Selected(q.ID),
		index,
		h.attempt.QuestionCount(),
		h.attempt.AtStart(),
		h.attempt.AtEnd(),
	)
}

func (h *WSHandler) stateView() statePayload {
	return statePayload{
		Phase:         phaseLabel(h.attempt.Phase()),
		Guard:         h.attempt.GuardActive(),
		QuestionCount: h.attempt.QuestionCount(),
	}
}

func phaseLabel(p app.Phase) string {
	switch p {
	case app.PhaseActive:
		return "active"
	case app.PhaseSubmitting:
		return "submitting"
	case app.PhaseGraded:
		return "graded"
	case app.PhaseExpired:
		return "expired"
	case app.PhaseSubmitFailed:
		return "submitFailed"
	default:
		return "unknown"
	}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
