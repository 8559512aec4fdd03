package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/kiasamouie/loopy/internal/database"
	"github.com/kiasamouie/loopy/internal/loopy"
	"github.com/kiasamouie/loopy/internal/models"
	"github.com/kiasamouie/loopy/pkg/errors"
)

// AddStampsHandler adds stamps to a card, resolving it by email through
// the datastore when no card id is given.
type AddStampsHandler struct {
	client *loopy.Client
	repo   database.Repository
	logger *zap.Logger
}

// NewAddStampsHandler creates a new add-stamps handler
func NewAddStampsHandler(client *loopy.Client, repo database.Repository, logger *zap.Logger) *AddStampsHandler {
	return &AddStampsHandler{
		client: client,
		repo:   repo,
		logger: logger,
	}
}

// HandleAddStamps handles POST /add-stamps
// @Summary     Add stamps to a loyalty card
// @Description Adds stamps to a card identified by cardId or by customer email. Stamps defaults to 1 when not a positive number.
// @Tags        cards
// @Accept      application/json
// @Produce     application/json
// @Param       request body     models.AddStampsRequest true "Card reference and stamp count"
// @Success     200     {object} map[string]interface{}
// @Failure     400     {object} map[string]string
// @Failure     404     {object} map[string]string
// @Failure     500     {object} map[string]string
// @Router      /add-stamps [post]
func (h *AddStampsHandler) HandleAddStamps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		sendError(w, errors.ErrMethodNotAllowed)
		return
	}

	var req models.AddStampsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, errors.Wrap(err, errors.ErrInvalidRequest))
		return
	}

	cardID := req.CardID
	if cardID == "" {
		if req.Email == "" {
			sendError(w, errors.WithMessage(errors.ErrInvalidRequest, "Must provide either cardId or email"))
			return
		}

		resolved, err := h.repo.GetCardIDByEmail(ctx, req.Email)
		if err != nil {
			respondError(w, h.logger, errors.Wrap(err, errors.ErrInternalServer))
			return
		}
		if resolved == "" {
			sendError(w, errors.WithMessage(errors.ErrCardNotFound, fmt.Sprintf("Card not found for email: %s", req.Email)))
			return
		}
		cardID = resolved
	}

	stamps := req.Stamps
	if stamps < 1 {
		stamps = 1
	}

	raw, err := h.client.AddStamps(ctx, cardID, stamps)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	// The external call succeeded and is authoritative; the local counter
	// is a derived cache. A failed increment leaves it stale until the
	// next card sync, so log it as a reconciliation signal, not a failure.
	if err := h.repo.IncrementStamps(ctx, cardID, stamps); err != nil {
		h.logger.Warn("Local stamp counter increment failed, reconciliation needed",
			zap.String("card_id", cardID),
			zap.Int("stamps", stamps),
			zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}
