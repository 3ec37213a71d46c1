package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/cache"
	"github.com/Skotchmaster/storefront/pkg/events"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/money"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	testSecret        = "test-jwt-secret"
	testWebhookSecret = "whsec_http"
)

type fakeGateway struct {
	mu        sync.Mutex
	intentErr error
	sessReqs  []payment.SessionRequest
}

func (g *fakeGateway) CreatePaymentIntent(context.Context, payment.IntentRequest) (payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.intentErr != nil {
		return payment.Intent{}, g.intentErr
	}
	return payment.Intent{ID: "pi_http", ClientSecret: "pi_http_secret"}, nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessReqs = append(g.sessReqs, req)
	return payment.Session{ID: "cs_http", URL: "https://pay.test/cs_http"}, nil
}

type unusedSessions struct{}

func (unusedSessions) New(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return nil, nil
}

type unusedIntents struct{}

func (unusedIntents) New(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return nil, nil
}

type server struct {
	e     *echo.Echo
	db    *gorm.DB
	gw    *fakeGateway
	redis *miniredis.Miniredis
}

type serverOpts struct {
	detailed bool
	baseURL  string
}

func newServer(t *testing.T, opts serverOpts) *server {
	t.Helper()

	db := testutil.NewDB(t)
	r := repo.New(db)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	pages := cache.New(rdb, time.Minute)

	verifier, err := payment.NewStripe(payment.StripeConfig{
		WebhookSecret: testWebhookSecret,
		Clients:       &payment.StripeClients{Sessions: unusedSessions{}, Intents: unusedIntents{}},
	})
	require.NoError(t, err)

	gw := &fakeGateway{}
	policy := money.DefaultPolicy()
	cartSvc := &service.CartService{Repo: r, Cache: pages, Events: events.Noop{}, Money: policy}

	e := echo.New()
	Register(e, &Deps{
		DB:             db,
		Auth:           middleware.New([]byte(testSecret), false),
		DetailedErrors: opts.detailed,
		AuthHandler: &AuthHTTP{
			Svc:  &service.AuthService{Repo: r, JWTSecret: []byte(testSecret), AccessTTL: time.Hour},
			Cart: cartSvc,
		},
		CatalogHandler: &CatalogHTTP{
			Svc:     &service.CatalogService{Repo: r, Cache: pages},
			Cart:    cartSvc,
			Reviews: &service.ReviewService{Repo: r, Cache: pages},
			Cache:   pages,
		},
		CartHandler:      &CartHTTP{Svc: cartSvc},
		GuestCartHandler: &GuestCartHTTP{Cart: cartSvc},
		AddressHandler:   &AddressHTTP{Svc: &service.AddressService{Repo: r}},
		CheckoutHandler: &CheckoutHTTP{
			Svc:     &service.CheckoutService{Repo: r, Gateway: gw, Money: policy, Events: events.Noop{}},
			BaseURL: opts.baseURL,
		},
		WebhookHandler: &WebhookHTTP{Svc: &service.FulfillmentService{Repo: r, Verifier: verifier, Cache: pages, Events: events.Noop{}}},
		OrderHandler:   &OrderHTTP{Svc: &service.OrderService{Repo: r, Money: policy}},
	})
	return &server{e: e, db: db, gw: gw, redis: mr}
}

func bearer(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := tokens.NewAccessToken([]byte(testSecret), u.ID.String(), u.Role, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return "Bearer " + tok
}

type call struct {
	method  string
	path    string
	body    any
	auth    string
	header  map[string]string
	cookies []*http.Cookie
}

func (s *server) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := c.body.(type) {
	case nil:
	case []byte:
		buf.Write(b)
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.auth != "" {
		req.Header.Set(echo.HeaderAuthorization, c.auth)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
