// Package loopy wraps the Loopy Loyalty REST API. Each exported method
// maps to one endpoint; a single request helper does the signing, JSON
// plumbing and status handling. One attempt per call, no retries, no
// backoff.
package loopy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kiasamouie/loopy/internal/auth"
	"github.com/kiasamouie/loopy/internal/cache"
	"github.com/kiasamouie/loopy/internal/campaign"
	"github.com/kiasamouie/loopy/internal/database"
	"github.com/kiasamouie/loopy/internal/models"
	"github.com/kiasamouie/loopy/internal/normalize"
	"github.com/kiasamouie/loopy/pkg/errors"
)

// DefaultBaseURL is the public Loopy Loyalty API endpoint.
const DefaultBaseURL = "https://api.loopyloyalty.com/v1"

// defaultTokenTTL matches the platform's accepted token lifetime.
const defaultTokenTTL = 3600 * time.Second

// Credentials identify one Loopy Loyalty account. They are immutable for
// the life of the client.
type Credentials struct {
	APIKey    string
	APISecret string
	Username  string
	BaseURL   string
}

// Client is a thin wrapper over the Loopy Loyalty REST API. The signed
// token and the resolved default campaign id are cached in memory for the
// lifetime of the instance. A Client is not safe for concurrent use; it
// assumes the single-call-at-a-time usage of the handlers it backs.
type Client struct {
	baseURL    string
	signer     *auth.Signer
	httpClient *http.Client
	repo       database.Repository
	cache      cache.CampaignCache
	logger     *zap.Logger
	resolver   *campaign.Resolver
	tokenTTL   time.Duration

	token      string
	campaignID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP transport. Timeouts are whatever the
// given client carries; the wrapper adds none of its own.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithRepository enables card synchronization and the datastore tier of
// the default-campaign resolver.
func WithRepository(repo database.Repository) Option {
	return func(c *Client) { c.repo = repo }
}

// WithCampaignCache enables the shared cache tier of the default-campaign
// resolver.
func WithCampaignCache(campaignCache cache.CampaignCache) Option {
	return func(c *Client) { c.cache = campaignCache }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTokenTTL overrides the signed token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Client) { c.tokenTTL = ttl }
}

// New creates a client for the given credentials.
func New(creds Credentials, opts ...Option) *Client {
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
		tokenTTL:   defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.signer = auth.NewSigner(creds.APIKey, creds.APISecret, creds.Username, c.tokenTTL)

	// Resolver tiers, cheapest first. Misses fall through; only the live
	// fetch talks to the platform.
	tiers := []campaign.Tier{c.memoryTier}
	if c.cache != nil {
		tiers = append(tiers, c.cacheTier)
	}
	if c.repo != nil {
		tiers = append(tiers, c.datastoreTier)
	}
	tiers = append(tiers, c.liveTier)
	c.resolver = campaign.NewResolver(c.logger, tiers...)

	return c
}

// Token returns the cached signed token, generating one on first use. The
// token is reused for every call until ClearToken discards it; a request
// made after expiry simply fails upstream.
func (c *Client) Token() (string, error) {
	if c.token == "" {
		token, err := c.signer.Sign()
		if err != nil {
			return "", err
		}
		c.token = token
	}
	return c.token, nil
}

// ClearToken discards the cached token so the next call signs a fresh one.
func (c *Client) ClearToken() {
	c.token = ""
}

type call struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	public bool
	strict bool
}

// do issues a single request. Authenticated calls attach the signed token
// as the Authorization header. Strict calls fail on non-2xx status with
// the status code and body text; the rest return the upstream JSON
// verbatim, failing only when the reply is not parseable JSON.
func (c *Client) do(ctx context.Context, req call) (json.RawMessage, error) {
	data, _, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		// Some mutating endpoints reply with no body.
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("upstream reply is not valid JSON: %q", truncate(data))
	}
	return json.RawMessage(data), nil
}

// doBytes issues a single request for a non-JSON payload (images). Always
// strict.
func (c *Client) doBytes(ctx context.Context, req call) ([]byte, error) {
	req.strict = true
	data, _, err := c.roundTrip(ctx, req)
	return data, err
}

func (c *Client) roundTrip(ctx context.Context, req call) ([]byte, int, error) {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if !req.public {
		token, err := c.Token()
		if err != nil {
			return nil, 0, err
		}
		httpReq.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if req.strict && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return nil, resp.StatusCode, errors.Upstream(resp.StatusCode, string(data))
	}

	return data, resp.StatusCode, nil
}

func truncate(data []byte) string {
	const max = 256
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}

// resolveCampaign returns the explicit id when given, otherwise runs the
// resolver chain. A resolved id is immutable for the life of the instance
// and written back to the shared cache best-effort.
func (c *Client) resolveCampaign(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if c.campaignID != "" {
		return c.campaignID, nil
	}

	id, err := c.resolver.Resolve(ctx)
	if err != nil {
		return "", err
	}
	c.campaignID = id

	if c.cache != nil {
		if err := c.cache.SetDefaultCampaign(ctx, id); err != nil {
			c.logger.Warn("Failed to share resolved campaign id", zap.Error(err))
		}
	}

	return id, nil
}

func (c *Client) memoryTier(ctx context.Context) (string, bool, error) {
	return c.campaignID, c.campaignID != "", nil
}

func (c *Client) cacheTier(ctx context.Context) (string, bool, error) {
	id, err := c.cache.GetDefaultCampaign(ctx)
	if err != nil {
		return "", false, err
	}
	return id, id != "", nil
}

func (c *Client) datastoreTier(ctx context.Context) (string, bool, error) {
	id, err := c.repo.GetAnyCampaignID(ctx)
	if err != nil {
		return "", false, err
	}
	return id, id != "", nil
}

func (c *Client) liveTier(ctx context.Context) (string, bool, error) {
	raw, err := c.ListCampaigns(ctx)
	if err != nil {
		return "", false, err
	}
	var list models.CampaignList
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", false, fmt.Errorf("failed to decode campaign list: %w", err)
	}
	if len(list.Rows) == 0 {
		return "", false, nil
	}
	return list.Rows[0].Value.ID, true, nil
}

// — Auth —

// Login authenticates with username and password against the public login
// endpoint and caches the returned token in place of a locally signed one.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	raw, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/account/login",
		body:   models.LoginRequest{Username: username, Password: password},
		public: true,
		strict: true,
	})
	if err != nil {
		return "", err
	}
	var resp models.LoginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	c.token = resp.Token
	return c.token, nil
}

// — Campaigns —

func (c *Client) CreateCampaign(ctx context.Context, campaignData interface{}) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodPost, path: "/campaign", body: campaignData})
}

func (c *Client) CampaignExists(ctx context.Context, name string) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/campaign/exists/" + url.PathEscape(name)})
}

func (c *Client) GetCampaignByID(ctx context.Context, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{method: http.MethodGet, path: "/campaign/id/" + cid})
}

func (c *Client) GetCampaignByName(ctx context.Context, name string) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/campaign/name/" + url.PathEscape(name)})
}

// GetCampaignPublic fetches the public view of a campaign; no token is
// attached.
func (c *Client) GetCampaignPublic(ctx context.Context, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{method: http.MethodGet, path: "/campaign/public/" + cid, public: true})
}

func (c *Client) ListCampaigns(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/campaigns", strict: true})
}

func (c *Client) UpdateCampaign(ctx context.Context, updates interface{}, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{method: http.MethodPatch, path: "/campaign/" + cid, body: updates})
}

func (c *Client) DeleteCampaign(ctx context.Context, payload interface{}, campaignID string) error {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	_, err = c.do(ctx, call{method: http.MethodDelete, path: "/campaign/" + cid, body: payload, strict: true})
	return err
}

func (c *Client) PushCampaignChanges(ctx context.Context, payload interface{}, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{method: http.MethodPost, path: "/campaign/" + cid + "/push", body: payload})
}

// — Beacons —

func (c *Client) CreateBeacon(ctx context.Context, beaconData interface{}) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodPost, path: "/beacon", body: beaconData})
}

func (c *Client) GetBeacon(ctx context.Context, beaconID string) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/beacon/" + beaconID})
}

func (c *Client) ListBeacons(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/beacons"})
}

func (c *Client) UpdateBeacon(ctx context.Context, beaconID string, updates interface{}) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodPatch, path: "/beacon/" + beaconID, body: updates})
}

func (c *Client) DeleteBeacon(ctx context.Context, beaconID string, payload interface{}) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/beacon/" + beaconID, body: payload, strict: true})
	return err
}

// — Locations —

func (c *Client) CreateLocation(ctx context.Context, locationData interface{}) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodPost, path: "/location", body: locationData})
}

func (c *Client) GetLocation(ctx context.Context, locationID string) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/location/" + locationID})
}

func (c *Client) ListLocations(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/locations"})
}

func (c *Client) UpdateLocation(ctx context.Context, locationID string, updates interface{}) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodPatch, path: "/location/" + locationID, body: updates})
}

func (c *Client) DeleteLocation(ctx context.Context, locationID string, payload interface{}) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/location/" + locationID, body: payload, strict: true})
	return err
}

// — Cards & Stamps —

// ListCardsOptions controls the card listing. The zero value lists the
// default campaign's cards with the default pagination payload and syncs
// them to the datastore. Count asks the platform for the total only; the
// reply carries no card data and nothing is synced.
type ListCardsOptions struct {
	CampaignID string
	Count      bool
	Query      *models.DataTableQuery
	SkipSync   bool
}

// ListCards fetches the cards of a campaign. Unless SkipSync is set, the
// returned cards are projected into normalized rows and bulk-upserted
// keyed by external card id. A datastore error fails the whole call even
// though the upstream fetch already succeeded; callers retry the whole
// operation.
func (c *Client) ListCards(ctx context.Context, opts ListCardsOptions) (*models.ListCardsResult, error) {
	cid, err := c.resolveCampaign(ctx, opts.CampaignID)
	if err != nil {
		return nil, err
	}

	dt := models.DefaultDataTableQuery()
	if opts.Query != nil {
		dt = *opts.Query
	}

	query := url.Values{}
	query.Set("count", strconv.FormatBool(opts.Count))

	raw, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/card/cid/" + cid,
		query:  query,
		body:   map[string]interface{}{"dt": dt},
		strict: true,
	})
	if err != nil {
		return nil, err
	}

	// A count request gets a totals reply with no data field.
	if opts.Count {
		var payload struct {
			RecordsTotal int `json:"recordsTotal"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode card count: %w", err)
		}
		return &models.ListCardsResult{TotalRows: payload.RecordsTotal}, nil
	}

	var payload struct {
		Data []models.Card `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode card listing: %w", err)
	}
	cards := payload.Data

	if !opts.SkipSync && len(cards) > 0 && c.repo != nil {
		rows := normalize.CardRows(cards, cid)
		if err := c.repo.UpsertCards(ctx, rows); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternalServer)
		}
	}

	return &models.ListCardsResult{Data: cards, TotalRows: len(cards)}, nil
}

func (c *Client) GetCardByID(ctx context.Context, cardID string, includeEvents, includeRewards bool) (json.RawMessage, error) {
	query := url.Values{}
	if includeEvents {
		query.Set("includeEvents", "true")
	}
	if includeRewards {
		query.Set("includeRewards", "true")
	}
	return c.do(ctx, call{method: http.MethodGet, path: "/card/" + cardID, query: query})
}

func (c *Client) GetCardByUniqueID(ctx context.Context, uniqueIDType, uniqueIDValue, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	path := "/uniquecard/campaignid/" + cid + "/" + uniqueIDType + "/" + url.PathEscape(uniqueIDValue)
	return c.do(ctx, call{method: http.MethodGet, path: path})
}

// AddStamps adds stamps to a card. Non-positive stamp counts are replaced
// by 1.
func (c *Client) AddStamps(ctx context.Context, cardID string, stamps int) (json.RawMessage, error) {
	if stamps < 1 {
		stamps = 1
	}
	path := "/card/cid/" + cardID + "/addStamps/" + strconv.Itoa(stamps)
	return c.do(ctx, call{method: http.MethodPost, path: path, strict: true})
}

func (c *Client) AddStampsByUniqueID(ctx context.Context, uniqueIDType, uniqueIDValue string, stamps int, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if stamps < 1 {
		stamps = 1
	}
	path := "/uniquecard/campaignid/" + cid + "/" + uniqueIDType + "/" + url.PathEscape(uniqueIDValue) + "/addStamps/" + strconv.Itoa(stamps)
	return c.do(ctx, call{method: http.MethodPost, path: path, strict: true})
}

func (c *Client) RedeemReward(ctx context.Context, cardID string, rewardType, quantity int) (json.RawMessage, error) {
	path := "/card/cid/" + cardID + "/redeemReward/" + strconv.Itoa(rewardType) + "/" + strconv.Itoa(quantity)
	return c.do(ctx, call{method: http.MethodPost, path: path})
}

func (c *Client) RedeemRewardByUniqueID(ctx context.Context, uniqueIDType, uniqueIDValue string, rewardType, quantity int, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	path := "/uniquecard/campaignid/" + cid + "/" + uniqueIDType + "/" + url.PathEscape(uniqueIDValue) +
		"/redeemReward/" + strconv.Itoa(rewardType) + "/" + strconv.Itoa(quantity)
	return c.do(ctx, call{method: http.MethodPost, path: path})
}

func (c *Client) ResyncCard(ctx context.Context, cardID string, payload interface{}) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodPut, path: "/card/cid/" + cardID + "/resync", body: payload})
}

func (c *Client) DeleteCard(ctx context.Context, cardID string, payload interface{}) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/card/cid/" + cardID + "/delete", body: payload, strict: true})
	return err
}

// SendMessageToAllCards broadcasts a push message to every card in a
// campaign. The payload is forwarded as given.
func (c *Client) SendMessageToAllCards(ctx context.Context, payload interface{}, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{method: http.MethodPost, path: "/card/cid/" + cid + "/push", body: payload, strict: true})
}

// SendMessageToIndividualCard pushes a message to a single card. The
// payload carries the card id and message as given.
func (c *Client) SendMessageToIndividualCard(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodPost, path: "/card/push", body: payload, strict: true})
}

// EnrolCustomer enrols a customer into a campaign through the public
// enrolment endpoint; no token is attached.
func (c *Client) EnrolCustomer(ctx context.Context, customerData map[string]interface{}, dataConsentOptIn bool, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   "/enrol/" + cid,
		body:   models.EnrolRequest{CustomerData: customerData, DataConsentOptIn: dataConsentOptIn},
		public: true,
	})
}

// — Events & exports —

func (c *Client) ListEventsForCampaign(ctx context.Context, count bool, payload interface{}, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	if count {
		query.Set("count", "true")
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return c.do(ctx, call{method: http.MethodPost, path: "/events/analytics/transactions/" + cid, query: query, body: payload})
}

func (c *Client) ExportCampaign(ctx context.Context, exportPayload interface{}, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{method: http.MethodPost, path: "/export/" + cid, body: exportPayload})
}

// — Images —

func (c *Client) CreateImageAsset(ctx context.Context, imagePayload interface{}) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodPost, path: "/imageAsset", body: imagePayload})
}

// GetStripImage fetches a rendered strip image; the raw bytes are
// returned.
func (c *Client) GetStripImage(ctx context.Context, params url.Values) ([]byte, error) {
	return c.doBytes(ctx, call{method: http.MethodGet, path: "/images", query: params})
}

func (c *Client) GetStripImageTemplate(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/images/jsonTemplate"})
}

// GetStampImage fetches a stamp image; the raw bytes are returned.
func (c *Client) GetStampImage(ctx context.Context, imageID string) ([]byte, error) {
	return c.doBytes(ctx, call{method: http.MethodGet, path: "/images/stampImage/" + imageID})
}

func (c *Client) ListStampImages(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/images/stampTemplates"})
}

// — Subscriptions —

func (c *Client) CreateSubscription(ctx context.Context, subscriptionPayload interface{}) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodPost, path: "/subscription", body: subscriptionPayload})
}

func (c *Client) GetSampleEvent(ctx context.Context, eventType, campaignID string) (json.RawMessage, error) {
	cid, err := c.resolveCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{method: http.MethodGet, path: "/subscription/" + eventType + "/" + cid})
}

func (c *Client) DeleteSubscription(ctx context.Context, subscriptionID string, payload interface{}) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/subscription/" + subscriptionID, body: payload, strict: true})
	return err
}

// — Subusers —

func (c *Client) CreateSubuser(ctx context.Context, subuserPayload interface{}) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodPost, path: "/subuser", body: subuserPayload})
}

func (c *Client) ListSubusers(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/subusers"})
}

func (c *Client) GetSubuser(ctx context.Context, subuserID string) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/subuser/" + subuserID})
}

func (c *Client) UpdateSubuser(ctx context.Context, subuserID string, updates interface{}) (json.RawMessage, error) {
	return c.do(ctx, call{method: http.MethodPatch, path: "/subuser/" + subuserID, body: updates})
}

func (c *Client) DeleteSubuser(ctx context.Context, subuserID string, payload interface{}) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/subuser/" + subuserID, body: payload, strict: true})
	return err
}
