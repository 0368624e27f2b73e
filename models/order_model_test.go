package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, status := range []OrderStatus{OrderPending, OrderAccepted, OrderRejected, OrderCompleted} {
		assert.True(t, status.Valid(), string(status))
	}
	assert.False(t, OrderStatus("Shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
	assert.False(t, OrderStatus("pending").Valid(), "statuses are case sensitive")
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderCompleted.Terminal())
	assert.True(t, OrderRejected.Terminal())
	assert.False(t, OrderPending.Terminal())
	assert.False(t, OrderAccepted.Terminal())
}

func TestPaymentStatusValid(t *testing.T) {
	for _, status := range []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed} {
		assert.True(t, status.Valid(), string(status))
	}
	assert.False(t, PaymentStatus("Refunded").Valid())
	assert.False(t, PaymentStatus("").Valid())
}
