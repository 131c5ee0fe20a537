package ingress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/oshokin/order-alarm/internal/domain/push"
	"github.com/oshokin/order-alarm/internal/logger"
	"github.com/oshokin/order-alarm/internal/repository/token"
	"github.com/oshokin/order-alarm/internal/service/receiver"
)

// Routes served by the handler.
const (
	PathMessages = "/v1/messages"
	PathTokens   = "/v1/tokens"
	PathHealth   = "/healthz"
)

// maxBodyBytes bounds a single request body.
const maxBodyBytes = 64 << 10

// Receiver handles decoded push traffic.
type Receiver interface {
	OnMessageReceived(ctx context.Context, msg *push.Message) receiver.Outcome
	OnNewToken(ctx context.Context, value string) error
	LastToken(ctx context.Context) (*token.Token, error)
}

// MessageResponse acknowledges an accepted push message.
type MessageResponse struct {
	MessageID string           `json:"message_id"`
	Action    receiver.Outcome `json:"action"`
}

// TokenRequest carries a refreshed push token.
type TokenRequest struct {
	Token string `json:"token"`
}

// TokenResponse describes the stored push token.
type TokenResponse struct {
	Token     string    `json:"token"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler routes ingress requests to the receiver.
type Handler struct {
	receiver Receiver
	newID    func() string
}

// NewHandler builds the HTTP router of the push ingress.
func NewHandler(r Receiver) http.Handler {
	h := &Handler{
		receiver: r,
		newID:    uuid.NewString,
	}

	return h.router()
}

func (h *Handler) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc(PathHealth, h.health).Methods(http.MethodGet)
	r.HandleFunc(PathMessages, h.postMessage).Methods(http.MethodPost)
	r.HandleFunc(PathTokens, h.postToken).Methods(http.MethodPost)
	r.HandleFunc(PathTokens, h.getToken).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithName(r.Context(), "ingress")

	var msg push.Message
	if err := decode(w, r, &msg); err != nil {
		logger.WarnKV(ctx, "Rejected push message", "error", err)
		writeError(w, http.StatusBadRequest, "invalid push message")

		return
	}

	if msg.ID == "" {
		msg.ID = h.newID()
	}

	outcome := h.receiver.OnMessageReceived(ctx, &msg)

	writeJSON(w, http.StatusAccepted, MessageResponse{
		MessageID: msg.ID,
		Action:    outcome,
	})
}

func (h *Handler) postToken(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithName(r.Context(), "ingress")

	var req TokenRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid token request")

		return
	}

	err := h.receiver.OnNewToken(ctx, req.Token)

	switch {
	case errors.Is(err, token.ErrEmpty):
		writeError(w, http.StatusBadRequest, "token is required")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "unable to store token")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) getToken(w http.ResponseWriter, r *http.Request) {
	t, err := h.receiver.LastToken(r.Context())

	switch {
	case errors.Is(err, token.ErrNotFound):
		writeError(w, http.StatusNotFound, "no token stored")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "unable to load token")
	default:
		writeJSON(w, http.StatusOK, TokenResponse{
			Token:     t.Value,
			UpdatedAt: t.UpdatedAt,
		})
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	return decoder.Decode(dst)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	_ = json.NewEncoder(w).Encode(body)
}
