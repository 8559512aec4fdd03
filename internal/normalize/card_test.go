package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kiasamouie/loopy/internal/models"
	"github.com/kiasamouie/loopy/internal/normalize"
)

func TestCardRow(t *testing.T) {
	card := models.Card{
		ID:                   "card-1",
		Status:               "active",
		CurrentStamps:        3,
		TotalStampsEarned:    13,
		TotalRewardsEarned:   2,
		TotalRewardsRedeemed: 1,
		Created:              "2024-01-02T10:00:00Z",
		Updated:              "2024-02-03T11:00:00Z",
		CustomerDetails: map[string]interface{}{
			"Email":         "alex@example.com",
			"First Name":    "Alex",
			"Last Name":     "Tunca",
			"Mobile Number": "+1234567890",
			"Date Of Birth - Birthday Discounts!": "1995-07-01",
			"Postcode": "AB1 2CD",
		},
	}

	row := normalize.CardRow(card, "camp-1")

	assert.Equal(t, "card-1", row.LoopyID)
	assert.Equal(t, "camp-1", row.CampaignID)
	assert.Equal(t, "active", row.Status)
	assert.Equal(t, 3, row.CurrentStamps)
	assert.Equal(t, 13, row.TotalStampsEarned)
	assert.Equal(t, 2, row.TotalRewardsEarned)
	assert.Equal(t, 1, row.TotalRewardsRedeemed)

	if assert.NotNil(t, row.Email) {
		assert.Equal(t, "alex@example.com", *row.Email)
	}
	if assert.NotNil(t, row.FirstName) {
		assert.Equal(t, "Alex", *row.FirstName)
	}
	if assert.NotNil(t, row.DateOfBirth) {
		assert.Equal(t, "1995-07-01", *row.DateOfBirth)
	}
	if assert.NotNil(t, row.Postcode) {
		assert.Equal(t, "AB1 2CD", *row.Postcode)
	}
}

func TestCardRow_MissingDetails(t *testing.T) {
	row := normalize.CardRow(models.Card{ID: "card-2", Status: "active"}, "camp-1")

	assert.Nil(t, row.Email)
	assert.Nil(t, row.FirstName)
	assert.Nil(t, row.LastName)
	assert.Nil(t, row.MobileNumber)
	assert.Nil(t, row.DateOfBirth)
	assert.Nil(t, row.Postcode)
}

func TestCardRow_UnparseableBirthday(t *testing.T) {
	card := models.Card{
		ID: "card-3",
		CustomerDetails: map[string]interface{}{
			"Date Of Birth - Birthday Discounts!": "not a date",
		},
	}

	row := normalize.CardRow(card, "camp-1")
	assert.Nil(t, row.DateOfBirth)
}

func TestCardRows(t *testing.T) {
	cards := []models.Card{{ID: "a"}, {ID: "b"}}

	rows := normalize.CardRows(cards, "camp-1")

	assert.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].LoopyID)
	assert.Equal(t, "b", rows[1].LoopyID)
	assert.Equal(t, "camp-1", rows[0].CampaignID)
}
