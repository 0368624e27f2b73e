package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload forges the provider's signature header: an HMAC-SHA256 of
// "<timestamp>.<payload>" under the shared webhook secret.
func signPayload(secret string, timestamp time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func checkoutCompletedPayload(userID, orderID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": "2023-10-16",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_123",
				"object": "checkout.session",
				"metadata": {"userId": %q, "orderId": %q}
			}
		}
	}`, userID, orderID))
}

func TestVerifyWebhook_ValidSignature(t *testing.T) {
	g := NewStripeGateway("sk_test_key", testWebhookSecret, "inr")

	payload := checkoutCompletedPayload("64a1f0c2e5b3a9d8c7f61234", "order-42")
	header := signPayload(testWebhookSecret, time.Now(), payload)

	event, err := g.VerifyWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "64a1f0c2e5b3a9d8c7f61234", event.Metadata["userId"])
	assert.Equal(t, "order-42", event.Metadata["orderId"])
}

func TestVerifyWebhook_TamperedPayload(t *testing.T) {
	g := NewStripeGateway("sk_test_key", testWebhookSecret, "inr")

	payload := checkoutCompletedPayload("64a1f0c2e5b3a9d8c7f61234", "order-42")
	header := signPayload(testWebhookSecret, time.Now(), payload)

	tampered := checkoutCompletedPayload("64a1f0c2e5b3a9d8c7f61234", "order-43")
	_, err := g.VerifyWebhook(tampered, header)
	assert.Error(t, err)
}

func TestVerifyWebhook_WrongSecret(t *testing.T) {
	g := NewStripeGateway("sk_test_key", testWebhookSecret, "inr")

	payload := checkoutCompletedPayload("64a1f0c2e5b3a9d8c7f61234", "order-42")
	header := signPayload("whsec_other_secret", time.Now(), payload)

	_, err := g.VerifyWebhook(payload, header)
	assert.Error(t, err)
}

func TestVerifyWebhook_GarbageHeader(t *testing.T) {
	g := NewStripeGateway("sk_test_key", testWebhookSecret, "inr")

	_, err := g.VerifyWebhook([]byte(`{}`), "not-a-signature")
	assert.Error(t, err)
}

func TestVerifyWebhook_StaleTimestamp(t *testing.T) {
	g := NewStripeGateway("sk_test_key", testWebhookSecret, "inr")

	payload := checkoutCompletedPayload("64a1f0c2e5b3a9d8c7f61234", "order-42")
	header := signPayload(testWebhookSecret, time.Now().Add(-time.Hour), payload)

	_, err := g.VerifyWebhook(payload, header)
	assert.Error(t, err, "signatures outside the tolerance window are replays")
}

func TestVerifyWebhook_OtherEventTypeHasNoMetadata(t *testing.T) {
	g := NewStripeGateway("sk_test_key", testWebhookSecret, "inr")

	payload := []byte(`{"id": "evt_test_2", "object": "event", "api_version": "2023-10-16", "type": "invoice.created", "data": {"object": {}}}`)
	header := signPayload(testWebhookSecret, time.Now(), payload)

	event, err := g.VerifyWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "invoice.created", event.Type)
	assert.Nil(t, event.Metadata)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(55000), toMinorUnits(550))
	assert.Equal(t, int64(55050), toMinorUnits(550.5))
	assert.Equal(t, int64(10), toMinorUnits(0.1), "no floating point drift on small amounts")
}
