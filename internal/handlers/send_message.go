package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/kiasamouie/loopy/internal/loopy"
	"github.com/kiasamouie/loopy/pkg/errors"
)

// SendMessageHandler dispatches a push message, either broadcast to every
// card in a campaign or to one individual card.
type SendMessageHandler struct {
	client *loopy.Client
	logger *zap.Logger
}

// NewSendMessageHandler creates a new send-message handler
func NewSendMessageHandler(client *loopy.Client, logger *zap.Logger) *SendMessageHandler {
	return &SendMessageHandler{
		client: client,
		logger: logger,
	}
}

// HandleSendMessage handles POST /send-message
// @Summary     Send a push message
// @Description Broadcasts to all cards of a campaign when sendToAll is true (forwarding the message field, or the whole body when absent); otherwise pushes the body as-is to an individual card.
// @Tags        messages
// @Accept      application/json
// @Produce     application/json
// @Param       campaignId query  string                 false "Campaign id; also read from body, resolved when absent"
// @Param       request    body   map[string]interface{} true  "Message payload"
// @Success     200 {object} map[string]interface{}
// @Failure     400 {object} map[string]string
// @Failure     404 {object} map[string]string
// @Failure     500 {object} map[string]string
// @Router      /send-message [post]
func (h *SendMessageHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		sendError(w, errors.ErrMethodNotAllowed)
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, errors.Wrap(err, errors.ErrInvalidRequest))
		return
	}

	// Campaign id from query or body; the client resolves a default when
	// both are absent.
	campaignID := r.URL.Query().Get("campaignId")
	if campaignID == "" {
		if v, ok := body["campaignId"].(string); ok {
			campaignID = v
		}
	}

	sendToAll, _ := body["sendToAll"].(bool)

	var raw json.RawMessage
	var err error
	if sendToAll {
		// Broadcast expects a nested message field, falling back to the
		// whole body when it is absent or carries an empty value.
		payload := interface{}(body)
		if message, ok := body["message"]; ok && hasValue(message) {
			payload = message
		}
		raw, err = h.client.SendMessageToAllCards(ctx, payload, campaignID)
	} else {
		raw, err = h.client.SendMessageToIndividualCard(ctx, body)
	}
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// hasValue reports whether a decoded JSON value is usable as a broadcast
// payload. Null, empty strings, false and zero are treated as absent.
func hasValue(v interface{}) bool {
	switch value := v.(type) {
	case nil:
		return false
	case string:
		return value != ""
	case bool:
		return value
	case float64:
		return value != 0
	default:
		return true
	}
}
