package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// WSHandler drives one quiz attempt per websocket connection. The connection's
// read loop is the single mutator of session state; the countdown's ticks and
// forced-submit result are pushed back over the same connection.
type WSHandler struct {
	service  *app.AttemptService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AttemptService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Option     string `json:"option"`
}

type jumpPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type startedPayload struct {
	TotalSeconds int `json:"totalSeconds"`
}

type tickPayload struct {
	Remaining int `json:"remaining"`
}

type positionPayload struct {
	Index         int `json:"index"`
	AnsweredCount int `json:"answeredCount"`
}

type statePayload struct {
	State string `json:"state"`
}

// questionView is the client-facing question shape; the correct answer never
// leaves the server.
type questionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Points  int      `json:"points"`
}

type quizView struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	TotalQuestions int            `json:"totalQuestions"`
	TotalPoints    int            `json:"totalPoints"`
	Questions      []questionView `json:"questions"`
}

func viewOf(quiz domain.Quiz) quizView {
	questions := make([]questionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, questionView{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Options: q.Options,
			Points:  q.Points,
		})
	}
	return quizView{
		ID:             quiz.ID,
		Title:          quiz.Title,
		Description:    quiz.Description,
		TotalQuestions: quiz.TotalQuestions,
		TotalPoints:    quiz.TotalPoints,
		Questions:      questions,
	}
}

// ServeAttempt upgrades the request and runs the attempt protocol until the
// client disconnects.
func (h *WSHandler) ServeAttempt(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	courseID := r.URL.Query().Get("course")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Timer events land here from the countdown goroutine; a forwarder moves
	// them onto the single writer so the connection never sees concurrent writes.
	events := make(chan outboundMessage[any], 16)
	session, err := h.service.NewSession(r.Context(), userID, courseID, quizID,
		app.WithEvents(app.SessionEvents{
			OnTick: func(remaining int) {
				select {
				case events <- outboundMessage[any]{Type: "tick", Payload: tickPayload{Remaining: remaining}}:
				default:
				}
			},
			OnSubmitted: func(result domain.AttemptResult) {
				select {
				case events <- outboundMessage[any]{Type: "result", Payload: result}:
				default:
				}
			},
		}))
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case msg := <-events:
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "quiz", Payload: viewOf(session.Quiz())}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.handle(r, session, send, inbound)
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handle(r *http.Request, session *app.Session, send chan<- outboundMessage[any], inbound inboundMessage) {
	switch inbound.Type {
	case "start":
		if err := session.Start(); err != nil {
			send <- errorMessage(err)
			return
		}
		send <- outboundMessage[any]{Type: "started", Payload: startedPayload{
			TotalSeconds: session.Remaining(),
		}}
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage(err)
			return
		}
		if err := session.SelectAnswer(payload.QuestionID, payload.Option); err != nil {
			send <- errorMessage(err)
			return
		}
		send <- positionMessage(session)
	case "next":
		session.Next()
		send <- positionMessage(session)
	case "previous":
		session.Previous()
		send <- positionMessage(session)
	case "jump":
		var payload jumpPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage(err)
			return
		}
		session.JumpTo(payload.Index)
		send <- positionMessage(session)
	case "submit":
		result, err := session.Submit(r.Context())
		if err != nil {
			send <- errorMessage(err)
			return
		}
		send <- outboundMessage[any]{Type: "result", Payload: result}
	case "reset":
		if err := session.Reset(); err != nil {
			send <- errorMessage(err)
			return
		}
		send <- outboundMessage[any]{Type: "state", Payload: statePayload{State: string(session.State())}}
	default:
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

func positionMessage(session *app.Session) outboundMessage[any] {
	return outboundMessage[any]{Type: "position", Payload: positionPayload{
		Index:         session.CurrentIndex(),
		AnsweredCount: session.AnsweredCount(),
	}}
}
