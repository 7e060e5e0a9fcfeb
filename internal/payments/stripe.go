package payments

import (
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// Gateway wraps the payment provider's SDK. The API key is injected here
// instead of living in package-level state.
type Gateway struct {
	api *client.API
	cfg Config
}

func NewGateway(cfg Config) *Gateway {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &Gateway{api: api, cfg: cfg}
}

// CreateIntent creates a payment intent for the given amount and returns the
// opaque client secret the frontend confirms against.
func (g *Gateway) CreateIntent(amount decimal.Decimal) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(ToMinorUnits(amount)),
		Currency: stripe.String(g.cfg.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}

// VerifyWebhook checks the provider's signature and decodes the event.
func (g *Gateway) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, g.cfg.WebhookSecret)
}

// ToMinorUnits converts a decimal amount to minor currency units (cents) by
// multiplying by 100 and truncating toward zero. Done on the decimal type so
// amounts like 19.99 never pick up float noise.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
