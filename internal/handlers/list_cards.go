package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kiasamouie/loopy/internal/loopy"
)

// ListCardsHandler fetches all cards of a campaign and mirrors them into
// the datastore unless disabled by query flag.
type ListCardsHandler struct {
	client *loopy.Client
	logger *zap.Logger
}

// NewListCardsHandler creates a new list-cards handler
func NewListCardsHandler(client *loopy.Client, logger *zap.Logger) *ListCardsHandler {
	return &ListCardsHandler{
		client: client,
		logger: logger,
	}
}

// HandleListCards handles GET/POST /list-cards
// @Summary     List and sync loyalty cards
// @Description Fetches all cards of a campaign (resolved when campaignId is absent) and upserts them into the datastore unless syncToDb=false.
// @Tags        cards
// @Produce     application/json
// @Param       campaignId query string false "Campaign id; resolved when absent"
// @Param       syncToDb   query string false "Set to false to skip the datastore sync"
// @Success     200 {object} models.ListCardsResult
// @Failure     404 {object} map[string]string
// @Failure     500 {object} map[string]string
// @Router      /list-cards [get]
func (h *ListCardsHandler) HandleListCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	campaignID := query.Get("campaignId")

	// Sync is on by default; only an explicit false disables it.
	sync := true
	if v := query.Get("syncToDb"); v != "" {
		sync = strings.EqualFold(v, "true")
	}

	result, err := h.client.ListCards(ctx, loopy.ListCardsOptions{
		CampaignID: campaignID,
		SkipSync:   !sync,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, result)
}
