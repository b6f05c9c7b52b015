// Package payment talks to the card payment provider: it opens payment
// intents for online orders and authenticates the provider's webhook calls.
package payment

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"badmintonStore/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

const (
	EventSucceeded = "payment_intent.succeeded"
	EventFailed    = "payment_intent.payment_failed"
)

// SignatureHeaderName is the request header carrying the webhook signature.
const SignatureHeaderName = "Stripe-Signature"

// SignatureTolerance bounds the age of an accepted webhook signature.
const SignatureTolerance = webhook.DefaultTolerance

type Bridge interface {
	CreatePaymentIntent(ctx context.Context, req Request) (Intent, error)
	ParseWebhook(payload []byte, signature string) (Event, error)
}

type Request struct {
	OrderId     int
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
}

type Intent struct {
	Id           string
	ClientSecret string
	Status       string
}

type Event struct {
	Id       string
	Type     string
	IntentId string
	OrderId  int
}

type Client struct {
	api           *client.API
	configured    bool
	webhookSecret string
}

func NewClient(baseURL, secretKey, webhookSecret string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(strings.TrimRight(baseURL, "/")),
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     log.StandardLogger(),
	})
	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{API: backend})
	return &Client{
		api:           api,
		configured:    secretKey != "",
		webhookSecret: webhookSecret,
	}
}

// MinorUnits converts an amount to the provider's integer representation.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func (c *Client) CreatePaymentIntent(ctx context.Context, req Request) (intent Intent, err error) {
	if !c.configured {
		err = errors.Wrap(models.ErrUpstream, "payment provider is not configured")
		return
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(MinorUnits(req.Amount)),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", strconv.Itoa(req.OrderId))
	params.AddMetadata("order_number", req.OrderNumber)

	pi, e := c.api.PaymentIntents.New(params)
	if e != nil {
		log.WithError(e).WithField("order_id", req.OrderId).Error("payment intent request failed")
		err = errors.Wrap(models.ErrUpstream, "payment provider rejected the intent")
		return
	}
	if pi.ID == "" || pi.ClientSecret == "" {
		err = errors.Wrap(models.ErrUpstream, "payment intent without client secret")
		return
	}
	intent = Intent{Id: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}
	return
}

// SignPayload computes the v1 signature the provider sends for payload at ts.
func SignPayload(secret string, payload []byte, ts time.Time) string {
	return hex.EncodeToString(webhook.ComputeSignature(ts, payload, secret))
}

// SignatureHeader formats a signature header for payload at ts.
func SignatureHeader(secret string, payload []byte, ts time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	}).Header
}

func (c *Client) ParseWebhook(payload []byte, signature string) (event Event, err error) {
	if c.webhookSecret == "" {
		err = errors.Wrap(models.ErrUpstream, "webhook secret is not configured")
		return
	}
	ev, e := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                SignatureTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if e != nil {
		err = errors.Wrap(models.ErrValidation, e.Error())
		return
	}

	event = Event{Id: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return
	}
	var pi stripe.PaymentIntent
	if e := json.Unmarshal(ev.Data.Raw, &pi); e != nil {
		err = errors.Wrap(models.ErrValidation, "malformed webhook payload")
		return
	}
	event.IntentId = pi.ID
	if v, ok := pi.Metadata["order_id"]; ok {
		event.OrderId, _ = strconv.Atoi(v)
	}
	return
}
