package auth_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kiasamouie/loopy/internal/auth"
)

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestSign_ThreeSegments(t *testing.T) {
	signer := auth.NewSigner("key-123", "secret", "merchant", time.Hour).WithClock(fixedClock(t))

	token, err := signer.Sign()
	assert.NoError(t, err)

	segments := strings.Split(token, ".")
	assert.Len(t, segments, 3)
	for i, segment := range segments {
		assert.NotEmpty(t, segment, "segment %d", i)
		_, err := base64.RawURLEncoding.DecodeString(segment)
		assert.NoError(t, err, "segment %d is not base64url", i)
	}
}

func TestSign_Claims(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	signer := auth.NewSigner("key-123", "secret", "merchant", time.Hour).
		WithClock(func() time.Time { return now })

	token, err := signer.Sign()
	assert.NoError(t, err)

	segments := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(segments[1])
	assert.NoError(t, err)

	var claims map[string]interface{}
	assert.NoError(t, json.Unmarshal(payload, &claims))
	assert.Equal(t, "key-123", claims["uid"])
	assert.Equal(t, "merchant", claims["username"])
	assert.Equal(t, float64(now.Add(-10*time.Second).Unix()), claims["iat"])
	assert.Equal(t, float64(now.Add(time.Hour).Unix()), claims["exp"])

	header, err := base64.RawURLEncoding.DecodeString(segments[0])
	assert.NoError(t, err)
	var headerFields map[string]interface{}
	assert.NoError(t, json.Unmarshal(header, &headerFields))
	assert.Equal(t, "HS256", headerFields["alg"])
	assert.Equal(t, "JWT", headerFields["typ"])
}

func TestSign_Deterministic(t *testing.T) {
	clock := fixedClock(t)

	first, err := auth.NewSigner("key-123", "secret", "merchant", time.Hour).WithClock(clock).Sign()
	assert.NoError(t, err)

	second, err := auth.NewSigner("key-123", "secret", "merchant", time.Hour).WithClock(clock).Sign()
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSign_SecretChangesOnlySignature(t *testing.T) {
	clock := fixedClock(t)

	first, err := auth.NewSigner("key-123", "secret-a", "merchant", time.Hour).WithClock(clock).Sign()
	assert.NoError(t, err)
	second, err := auth.NewSigner("key-123", "secret-b", "merchant", time.Hour).WithClock(clock).Sign()
	assert.NoError(t, err)

	firstSegments := strings.Split(first, ".")
	secondSegments := strings.Split(second, ".")
	assert.Equal(t, firstSegments[0], secondSegments[0])
	assert.Equal(t, firstSegments[1], secondSegments[1])
	assert.NotEqual(t, firstSegments[2], secondSegments[2])
}

func TestSign_MissingSecret(t *testing.T) {
	signer := auth.NewSigner("key-123", "", "merchant", time.Hour)

	_, err := signer.Sign()
	assert.Error(t, err)
}
