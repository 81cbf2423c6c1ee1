package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionPaymentStatus(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{PaymentStatusPending, PaymentStatusPaid, true},
		{PaymentStatusPending, PaymentStatusConfirmed, true},
		{PaymentStatusPending, PaymentStatusCancelled, true},
		{PaymentStatusPending, PaymentStatusRefunded, true},
		{PaymentStatusPaid, PaymentStatusConfirmed, true},
		{PaymentStatusPaid, PaymentStatusRefunded, true},
		{PaymentStatusPaid, PaymentStatusPending, false},
		{PaymentStatusPaid, PaymentStatusCancelled, false},
		{PaymentStatusConfirmed, PaymentStatusPending, false},
		{PaymentStatusConfirmed, PaymentStatusRefunded, false},
		{PaymentStatusCancelled, PaymentStatusPaid, false},
		{PaymentStatusRefunded, PaymentStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransitionPaymentStatus(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestValidPaymentStatus(t *testing.T) {
	for _, s := range []string{
		PaymentStatusPending, PaymentStatusPaid, PaymentStatusConfirmed,
		PaymentStatusCancelled, PaymentStatusRefunded,
	} {
		assert.True(t, ValidPaymentStatus(s), s)
	}

	assert.False(t, ValidPaymentStatus("shipped"))
	assert.False(t, ValidPaymentStatus(""))
}

func TestPaymentIsParty(t *testing.T) {
	payment := &Payment{
		Buyer:  Party{UserID: "buyer-1", Name: "Bob"},
		Seller: Party{UserID: "seller-1", Name: "Alice"},
	}

	assert.True(t, payment.IsParty("buyer-1"))
	assert.True(t, payment.IsParty("seller-1"))
	assert.False(t, payment.IsParty("stranger"))
}
