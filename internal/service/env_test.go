package service

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/money"
)

type recordedEvent struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) all() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

type fakeGateway struct {
	mu         sync.Mutex
	intentReqs []payment.IntentRequest
	sessReqs   []payment.SessionRequest

	intent    payment.Intent
	session   payment.Session
	intentErr error
	sessErr   error
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, req payment.IntentRequest) (payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intentReqs = append(g.intentReqs, req)
	return g.intent, g.intentErr
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessReqs = append(g.sessReqs, req)
	return g.session, g.sessErr
}

type env struct {
	db     *gorm.DB
	repo   *repo.GormRepo
	events *recordingPublisher
	gw     *fakeGateway
	money  money.Policy
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	return &env{
		db:     db,
		repo:   repo.New(db),
		events: &recordingPublisher{},
		gw: &fakeGateway{
			intent:  payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"},
			session: payment.Session{ID: "cs_1", URL: "https://pay.test/cs_1"},
		},
		money: money.DefaultPolicy(),
	}
}

func (e *env) cart() *CartService {
	return &CartService{Repo: e.repo, Events: e.events, Money: e.money}
}

func (e *env) checkout() *CheckoutService {
	return &CheckoutService{Repo: e.repo, Gateway: e.gw, Money: e.money, Events: e.events}
}

func (e *env) orders() *OrderService {
	return &OrderService{Repo: e.repo, Money: e.money}
}

func (e *env) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
