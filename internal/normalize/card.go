package normalize

import "github.com/kiasamouie/loopy/internal/models"

// Customer detail keys as they appear on Loopy enrolment forms.
const (
	detailEmail       = "Email"
	detailFirstName   = "First Name"
	detailLastName    = "Last Name"
	detailMobile      = "Mobile Number"
	detailDateOfBirth = "Date Of Birth - Birthday Discounts!"
	detailPostcode    = "Postcode"
)

// CardRow flattens a Card into its datastore projection, extracting the
// free-form customer detail fields and normalizing the date of birth.
func CardRow(card models.Card, campaignID string) models.CardRow {
	row := models.CardRow{
		LoopyID:              card.ID,
		CampaignID:           campaignID,
		Status:               card.Status,
		CurrentStamps:        card.CurrentStamps,
		TotalStampsEarned:    card.TotalStampsEarned,
		TotalRewardsEarned:   card.TotalRewardsEarned,
		TotalRewardsRedeemed: card.TotalRewardsRedeemed,
		Created:              card.Created,
		Updated:              card.Updated,
		Email:                detailString(card.CustomerDetails, detailEmail),
		FirstName:            detailString(card.CustomerDetails, detailFirstName),
		LastName:             detailString(card.CustomerDetails, detailLastName),
		MobileNumber:         detailString(card.CustomerDetails, detailMobile),
		Postcode:             detailString(card.CustomerDetails, detailPostcode),
	}

	if raw := detailString(card.CustomerDetails, detailDateOfBirth); raw != nil {
		if dob, ok := Date(*raw); ok {
			row.DateOfBirth = &dob
		}
	}

	return row
}

// CardRows projects a batch of cards for a bulk upsert.
func CardRows(cards []models.Card, campaignID string) []models.CardRow {
	rows := make([]models.CardRow, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, CardRow(card, campaignID))
	}
	return rows
}

func detailString(details map[string]interface{}, key string) *string {
	if details == nil {
		return nil
	}
	value, ok := details[key].(string)
	if !ok {
		return nil
	}
	return &value
}
