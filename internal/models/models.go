package models

// Card is a customer's loyalty pass instance as returned by the Loopy
// Loyalty API. Cards are owned by the platform; this service only reads
// and mirrors them.
type Card struct {
	ID                   string                 `json:"id"`
	CampaignKey          string                 `json:"campaign_key,omitempty"`
	Status               string                 `json:"status"`
	CurrentStamps        int                    `json:"currentStamps"`
	TotalStampsEarned    int                    `json:"totalStampsEarned"`
	TotalRewardsEarned   int                    `json:"totalRewardsEarned,omitempty"`
	TotalRewardsRedeemed int                    `json:"totalRewardsRedeemed"`
	Created              string                 `json:"created"`
	Updated              string                 `json:"updated"`
	CustomerDetails      map[string]interface{} `json:"customerDetails,omitempty"`
}

// CardRow is the flattened, datastore-ready projection of a Card, upserted
// keyed by the external card identifier (loopy_id), last write wins.
type CardRow struct {
	LoopyID              string  `db:"loopy_id"`
	CampaignID           string  `db:"campaign_id"`
	Status               string  `db:"status"`
	CurrentStamps        int     `db:"current_stamps"`
	TotalStampsEarned    int     `db:"total_stamps_earned"`
	TotalRewardsEarned   int     `db:"total_rewards_earned"`
	TotalRewardsRedeemed int     `db:"total_rewards_redeemed"`
	Created              string  `db:"created"`
	Updated              string  `db:"updated"`
	Email                *string `db:"email"`
	FirstName            *string `db:"first_name"`
	LastName             *string `db:"last_name"`
	MobileNumber         *string `db:"mobile_number"`
	DateOfBirth          *string `db:"date_of_birth"`
	Postcode             *string `db:"postcode"`
}

// CampaignList is the shape of the upstream campaign listing. Only the id
// of each entry is read; everything else is passed through verbatim.
type CampaignList struct {
	Rows []CampaignListRow `json:"rows"`
}

// CampaignListRow is a single entry of the upstream campaign listing.
type CampaignListRow struct {
	Value struct {
		ID string `json:"id"`
	} `json:"value"`
}

// ListCardsResult carries the cards returned by a listing call.
type ListCardsResult struct {
	Data      []Card `json:"data"`
	TotalRows int    `json:"total_rows"`
}

// DataTableQuery is the pagination/search/sort payload of the card listing
// endpoint.
type DataTableQuery struct {
	Draw   int            `json:"draw"`
	Start  int            `json:"start"`
	Length int            `json:"length"`
	Search string         `json:"search"`
	Order  DataTableOrder `json:"order"`
}

// DataTableOrder selects the sort column and direction of a listing.
type DataTableOrder struct {
	Column string `json:"column"`
	Dir    string `json:"dir"`
}

// DefaultDataTableQuery is the listing payload used when the caller
// supplies none: everything on one page, newest cards first.
func DefaultDataTableQuery() DataTableQuery {
	return DataTableQuery{
		Draw:   1,
		Start:  0,
		Length: 9999,
		Search: "",
		Order:  DataTableOrder{Column: "created", Dir: "desc"},
	}
}

// AddStampsRequest is the body of the add-stamps endpoint. Either CardID
// or Email must be set; Stamps defaults to 1 when not a positive number.
type AddStampsRequest struct {
	Email  string `json:"email,omitempty"`
	CardID string `json:"cardId,omitempty"`
	Stamps int    `json:"stamps,omitempty"`
}

// LoginRequest is the body of the public account login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the token the platform issues on login.
type LoginResponse struct {
	Token string `json:"token"`
}

// EnrolRequest is the body of the public customer enrolment endpoint.
type EnrolRequest struct {
	CustomerData     map[string]interface{} `json:"customerData"`
	DataConsentOptIn bool                   `json:"dataConsentOptIn"`
}
