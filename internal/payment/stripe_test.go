package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

type fakeIntents struct {
	got *stripe.PaymentIntentParams
	err error
}

func (f *fakeIntents) New(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
}

type fakeSessions struct {
	got *stripe.CheckoutSessionParams
	err error
}

func (f *fakeSessions) New(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.test/cs_123"}, nil
}

const testSecret = "whsec_test"

func newTestStripe(t *testing.T, in *fakeIntents, ss *fakeSessions) *Stripe {
	t.Helper()
	s, err := NewStripe(StripeConfig{
		WebhookSecret: testSecret,
		Clients:       &StripeClients{Intents: in, Sessions: ss},
	})
	require.NoError(t, err)
	return s
}

func TestNewStripe_RejectsBadKey(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", "pk_live_abc", "  "} {
		_, err := NewStripe(StripeConfig{APIKey: key})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMisconfigured)
	}
}

func TestStripe_CreatePaymentIntent(t *testing.T) {
	t.Parallel()

	in := &fakeIntents{}
	s := newTestStripe(t, in, &fakeSessions{})

	intent, err := s.CreatePaymentIntent(context.Background(), IntentRequest{OrderID: "ord-1", Amount: 6598, Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)

	require.NotNil(t, in.got)
	assert.EqualValues(t, 6598, *in.got.Amount)
	assert.Equal(t, "usd", *in.got.Currency)
	assert.Equal(t, "ord-1", in.got.Metadata[MetadataOrderID])
	require.NotNil(t, in.got.IdempotencyKey)
	assert.Equal(t, "pi-ord-1", *in.got.IdempotencyKey)
}

func TestStripe_CreatePaymentIntent_ClassifiesErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "auth", err: &stripe.Error{HTTPStatusCode: http.StatusUnauthorized, Msg: "bad key"}, want: ErrAuth},
		{name: "card", err: &stripe.Error{HTTPStatusCode: http.StatusPaymentRequired, Msg: "declined"}, want: ErrGateway},
		{name: "network", err: errors.New("dial tcp: timeout"), want: ErrGateway},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestStripe(t, &fakeIntents{err: tt.err}, &fakeSessions{})
			_, err := s.CreatePaymentIntent(context.Background(), IntentRequest{OrderID: "o", Amount: 100, Currency: "usd"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestStripe_CreateCheckoutSession(t *testing.T) {
	t.Parallel()

	ss := &fakeSessions{}
	s := newTestStripe(t, &fakeIntents{}, ss)

	sess, err := s.CreateCheckoutSession(context.Background(), SessionRequest{
		OrderID:    "ord-2",
		Currency:   "usd",
		SuccessURL: "http://shop.test/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "http://shop.test/cart",
		Items: []LineItem{
			{Name: "Mug", UnitAmount: 2499, Quantity: 2},
			{Name: "Shipping", UnitAmount: 1000, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_123", sess.ID)
	assert.NotEmpty(t, sess.URL)

	require.NotNil(t, ss.got)
	assert.Equal(t, "ord-2", *ss.got.ClientReferenceID)
	assert.Equal(t, "ord-2", ss.got.PaymentIntentData.Metadata[MetadataOrderID])
	require.Len(t, ss.got.LineItems, 2)
	assert.EqualValues(t, 2499, *ss.got.LineItems[0].PriceData.UnitAmount)
	assert.EqualValues(t, 2, *ss.got.LineItems[0].Quantity)
}

func signed(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(payload),
		Secret:  testSecret,
	})
	return sp.Header, sp.Payload
}

func TestStripe_ParseEvent(t *testing.T) {
	t.Parallel()

	s := newTestStripe(t, &fakeIntents{}, &fakeSessions{})

	t.Run("checkout completed", func(t *testing.T) {
		t.Parallel()
		header, body := signed(t, `{"id":"evt_1","object":"event","type":"checkout.session.completed",
			"data":{"object":{"id":"cs_1","object":"checkout.session","client_reference_id":"ord-9",
			"payment_intent":"pi_9","metadata":{"orderId":"ord-9"}}}}`)

		ev, err := s.ParseEvent(body, header)
		require.NoError(t, err)
		assert.True(t, ev.Fulfills())
		assert.Equal(t, "ord-9", ev.OrderRef)
		assert.Equal(t, "pi_9", ev.PaymentID)
		assert.Equal(t, "cs_1", ev.SessionID)
	})

	t.Run("payment intent succeeded", func(t *testing.T) {
		t.Parallel()
		header, body := signed(t, `{"id":"evt_2","object":"event","type":"payment_intent.succeeded",
			"data":{"object":{"id":"pi_7","object":"payment_intent","metadata":{"orderId":"ord-7"}}}}`)

		ev, err := s.ParseEvent(body, header)
		require.NoError(t, err)
		assert.True(t, ev.Fulfills())
		assert.Equal(t, "ord-7", ev.OrderRef)
		assert.Equal(t, "pi_7", ev.PaymentID)
	})

	t.Run("other type", func(t *testing.T) {
		t.Parallel()
		header, body := signed(t, `{"id":"evt_3","object":"event","type":"charge.refunded","data":{"object":{}}}`)

		ev, err := s.ParseEvent(body, header)
		require.NoError(t, err)
		assert.False(t, ev.Fulfills())
	})

	t.Run("bad signature", func(t *testing.T) {
		t.Parallel()
		_, body := signed(t, `{"id":"evt_4","object":"event","type":"payment_intent.succeeded","data":{"object":{}}}`)

		_, err := s.ParseEvent(body, "t=1,v1=deadbeef")
		assert.ErrorIs(t, err, ErrSignature)

		_, err = s.ParseEvent(body, "")
		assert.ErrorIs(t, err, ErrSignature)
	})
}

func TestUnconfigured(t *testing.T) {
	t.Parallel()

	var g Unconfigured
	_, err := g.CreatePaymentIntent(context.Background(), IntentRequest{})
	assert.ErrorIs(t, err, ErrMisconfigured)
	_, err = g.CreateCheckoutSession(context.Background(), SessionRequest{})
	assert.ErrorIs(t, err, ErrMisconfigured)
	_, err = g.ParseEvent(nil, "x")
	assert.ErrorIs(t, err, ErrMisconfigured)
}
