// Package payments proxies payment-intent creation to Stripe. The server only
// hands the client secret back to the app; confirmation happens on-device.
package payments

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

var ErrMissingAmount = errors.New("amount must be positive")

type Gateway struct {
	apiKey string
}

func NewGateway(apiKey string) *Gateway {
	stripe.Key = apiKey
	return &Gateway{apiKey: apiKey}
}

// CreateIntent creates a card payment intent. Amount is in minor currency
// units (cents); the conversion is the caller's job.
func (g *Gateway) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	if amount <= 0 {
		return "", ErrMissingAmount
	}
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}
