package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

const secret = "admin-secret"

type fakeRepo struct {
	mu        sync.Mutex
	products  []*domain.Product
	createErr error
	listErr   error
	creates   int
	lastQuery domain.ListQuery
	block     bool
}

func (r *fakeRepo) Create(ctx context.Context, p *domain.Product) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if r.createErr != nil {
		return "", r.createErr
	}
	cp := *p
	cp.ID = fmt.Sprintf("p%03d", len(r.products)+1)
	r.products = append(r.products, &cp)
	return cp.ID, nil
}

func (r *fakeRepo) List(ctx context.Context, q domain.ListQuery) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = q
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*domain.Product
	for _, p := range r.products {
		if q.HasCategory() && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

type fakeAudit struct{ entries []domain.AuthAuditEntry }

func (a *fakeAudit) RecordAuthFailure(_ context.Context, e domain.AuthAuditEntry) error {
	a.entries = append(a.entries, e)
	return nil
}

type fakePublisher struct {
	topics []string
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, topic, _ string, _ any) error {
	p.topics = append(p.topics, topic)
	return p.err
}

type fixture struct {
	repo      *fakeRepo
	audit     *fakeAudit
	publisher *fakePublisher
	svc       *CatalogApplicationService
	now       time.Time
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()
	f := &fixture{
		repo:      &fakeRepo{},
		audit:     &fakeAudit{},
		publisher: &fakePublisher{},
		now:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	clock := func() time.Time {
		f.now = f.now.Add(time.Second)
		return f.now
	}
	f.svc = NewCatalogApplicationService(Dependencies{
		Repo:      f.repo,
		Verifier:  domain.NewCredentialVerifier(secret),
		Audit:     f.audit,
		Publisher: f.publisher,
		Metrics:   metrics.New("catalog_test"),
	}, Options{Clock: clock, StoreTimeout: 50 * time.Millisecond})
	return f
}

func soap(price any) map[string]any {
	return map[string]any{"name": "Soap", "description": "Bar soap", "price": price, "category": "Household"}
}

func bearer() domain.Credentials { return domain.Credentials{Authorization: "Bearer " + secret} }

func TestCreateProduct_Success(t *testing.T) {
	f := newFixture(t, secret)

	id, err := f.svc.CreateProduct(context.Background(), CreateProductCommand{Payload: soap(50.0), Credentials: bearer()})
	require.NoError(t, err)
	assert.Equal(t, "p001", id)

	require.Len(t, f.repo.products, 1)
	p := f.repo.products[0]
	assert.Equal(t, "Household", p.Subcategory)
	assert.Equal(t, []string{domain.PlaceholderImage}, p.Images)
	assert.True(t, p.InStock)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.Equal(t, []string{domain.TopicProductCreated}, f.publisher.topics)
}

func TestCreateProduct_Unauthorized(t *testing.T) {
	for name, creds := range map[string]domain.Credentials{
		"none":        {},
		"wrong token": {AdminToken: "nope"},
		"wrong bear":  {Authorization: "Bearer nope"},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, secret)
			_, err := f.svc.CreateProduct(context.Background(), CreateProductCommand{Payload: soap(50.0), Credentials: creds, ClientIP: "10.0.0.1"})
			require.Error(t, err)
			assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
			assert.Zero(t, f.repo.creates)
			require.Len(t, f.audit.entries, 1)
			assert.Equal(t, "10.0.0.1", f.audit.entries[0].ClientIP)
		})
	}
}

func TestCreateProduct_UnconfiguredSecret(t *testing.T) {
	f := newFixture(t, "")
	_, err := f.svc.CreateProduct(context.Background(), CreateProductCommand{Payload: soap(50.0), Credentials: domain.Credentials{Authorization: "Bearer "}})
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	assert.Zero(t, f.repo.creates)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, domain.ReasonSecretNotConfigured, f.audit.entries[0].Reason)
}

func TestCreateProduct_InvalidInputSkipsStore(t *testing.T) {
	f := newFixture(t, secret)
	_, err := f.svc.CreateProduct(context.Background(), CreateProductCommand{Payload: soap(-1.0), Credentials: bearer()})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	assert.Equal(t, "Price must be a positive number", err.Error())
	assert.Zero(t, f.repo.creates)
}

func TestCreateProduct_StoreFailures(t *testing.T) {
	f := newFixture(t, secret)
	f.repo.createErr = fmt.Errorf("insert product: %w", domain.ErrPermissionDenied)
	_, err := f.svc.CreateProduct(context.Background(), CreateProductCommand{Payload: soap(50.0), Credentials: bearer()})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	f.repo.createErr = errors.New("connection reset")
	_, err = f.svc.CreateProduct(context.Background(), CreateProductCommand{Payload: soap(50.0), Credentials: bearer()})
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.ErrorContains(t, err, "connection reset")
	assert.Empty(t, f.publisher.topics)
}

func TestCreateProduct_StoreTimeout(t *testing.T) {
	f := newFixture(t, secret)
	f.repo.block = true
	_, err := f.svc.CreateProduct(context.Background(), CreateProductCommand{Payload: soap(50.0), Credentials: bearer()})
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCreateProduct_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, secret)
	f.publisher.err = errors.New("broker down")
	id, err := f.svc.CreateProduct(context.Background(), CreateProductCommand{Payload: soap(50.0), Credentials: bearer()})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestListProducts(t *testing.T) {
	f := newFixture(t, secret)
	ctx := context.Background()
	for _, c := range []string{"Household", "Grocery & Kitchen", "Household"} {
		p := soap(10.0)
		p["category"] = c
		_, err := f.svc.CreateProduct(ctx, CreateProductCommand{Payload: p, Credentials: bearer()})
		require.NoError(t, err)
	}

	res, err := f.svc.ListProducts(ctx, ListProductsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, "p003", res.Products[0].ID)
	assert.Equal(t, 20, f.repo.lastQuery.Limit)

	res, err = f.svc.ListProducts(ctx, ListProductsQuery{Category: "Grocery & Kitchen", Limit: "5"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Grocery & Kitchen", res.Products[0].Category)

	again, err := f.svc.ListProducts(ctx, ListProductsQuery{Category: "Grocery & Kitchen", Limit: "5"})
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestListProducts_Empty(t *testing.T) {
	f := newFixture(t, secret)
	res, err := f.svc.ListProducts(context.Background(), ListProductsQuery{Limit: "abc"})
	require.NoError(t, err)
	assert.NotNil(t, res.Products)
	assert.Zero(t, res.Total)
}

func TestListProducts_StoreError(t *testing.T) {
	f := newFixture(t, secret)
	f.repo.listErr = errors.New("unavailable")
	_, err := f.svc.ListProducts(context.Background(), ListProductsQuery{})
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	var e *domain.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "Failed to fetch products", e.Message)
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t, secret)
	assert.NoError(t, f.svc.Authorize(context.Background(), domain.Credentials{AdminToken: secret}, "", "/admin/products"))
	assert.Error(t, f.svc.Authorize(context.Background(), domain.Credentials{}, "", "/admin/products"))
	assert.Len(t, f.audit.entries, 1)
}
