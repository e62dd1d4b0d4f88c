package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securityexcellence/lwsync/internal/domain"
	"github.com/securityexcellence/lwsync/internal/productmap"
	"github.com/securityexcellence/lwsync/internal/resolver"
	"github.com/securityexcellence/lwsync/pkg/logger"
)

const testSecret = "test-webhook-secret"

// mockEnroller records revocation calls and fails selected products.
type mockEnroller struct {
	calls   []string // "email|productId|productType"
	failFor map[string]error
}

func (m *mockEnroller) Unenroll(_ context.Context, email, productID, productType string) (json.RawMessage, error) {
	m.calls = append(m.calls, email+"|"+productID+"|"+productType)
	if err, ok := m.failFor[productID]; ok {
		return nil, err
	}
	return json.RawMessage(`{"removed":true}`), nil
}

// mockOrders serves order fetches and counts them.
type mockOrders struct {
	orders map[int64]*domain.Order
	calls  int
}

func (m *mockOrders) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	m.calls++
	return m.orders[id], nil
}

// mockMetadata counts metafield lookups; always a miss unless populated.
type mockMetadata struct {
	variantFields map[int64][]domain.Metafield
	calls         int
}

func (m *mockMetadata) VariantMetafields(_ context.Context, id int64) ([]domain.Metafield, error) {
	m.calls++
	return m.variantFields[id], nil
}

func (m *mockMetadata) ProductMetafields(_ context.Context, _ int64) ([]domain.Metafield, error) {
	m.calls++
	return nil, nil
}

type handlerFixture struct {
	engine   *gin.Engine
	enroller *mockEnroller
	orders   *mockOrders
	meta     *mockMetadata
}

func newFixture(t *testing.T, pmap productmap.Map) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	l := logger.New("error")
	f := &handlerFixture{
		enroller: &mockEnroller{failFor: map[string]error{}},
		orders:   &mockOrders{orders: map[int64]*domain.Order{}},
		meta:     &mockMetadata{},
	}

	h := NewHandler(
		testSecret,
		domain.NewClassifier(f.orders, l),
		resolver.New(pmap, f.meta, l),
		f.enroller,
		l,
	)

	f.engine = gin.New()
	f.engine.POST("/api/shopify-webhook", h.Handle)
	return f
}

func (f *handlerFixture) deliver(t *testing.T, topic string, payload any, sign bool) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/shopify-webhook", bytes.NewReader(body))
	req.Header.Set(HeaderTopic, topic)
	if sign {
		req.Header.Set(HeaderHmac, Sign(body, testSecret))
	} else {
		req.Header.Set(HeaderHmac, Sign(body, "wrong-secret"))
	}

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandler_CancellationUnenrolls(t *testing.T) {
	// Scenario A: mapped SKU on a cancelled order.
	pmap := productmap.Map{"SKU-GOLD": {ProductID: "gold", ProductType: "course"}}
	f := newFixture(t, pmap)

	sku := "SKU-GOLD"
	rec := f.deliver(t, domain.TopicOrdersCancelled, domain.Event{
		Email:     "jane@example.com",
		LineItems: []domain.LineItem{{ID: 1, SKU: &sku}},
	}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)

	assert.True(t, resp.OK)
	assert.Equal(t, domain.TopicOrdersCancelled, resp.Topic)
	assert.Equal(t, "jane@example.com", resp.Email)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, ActionUnenrolled, resp.Actions[0].Status)
	assert.JSONEq(t, `{"removed":true}`, string(resp.Actions[0].Response))

	require.Len(t, f.enroller.calls, 1)
	assert.Equal(t, "jane@example.com|gold|course", f.enroller.calls[0])
}

func TestHandler_RefundWithUnmappedItem(t *testing.T) {
	// Scenario B: refund referencing a line item by id; SKU unmapped anywhere.
	f := newFixture(t, productmap.Map{})

	sku := "UNKNOWN-SKU"
	f.orders.orders[42] = &domain.Order{
		ID:        42,
		Email:     "bob@example.com",
		LineItems: []domain.LineItem{{ID: 7, SKU: &sku}},
	}

	rec := f.deliver(t, domain.TopicRefundsCreate, domain.Event{
		OrderID:         42,
		RefundLineItems: []domain.RefundLineItemRef{{LineItemID: 7}},
	}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)

	assert.True(t, resp.OK)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, ActionUnmapped, resp.Actions[0].Status)
	assert.Equal(t, "no_mapping", resp.Actions[0].Reason)
	assert.Empty(t, f.enroller.calls)
	assert.Equal(t, 1, f.orders.calls, "one fetch covers email resolution and the join")
}

func TestHandler_TamperedSignature(t *testing.T) {
	// Scenario C: bad signature, zero remote calls.
	f := newFixture(t, productmap.Map{})

	rec := f.deliver(t, domain.TopicOrdersCancelled, domain.Event{
		Email:     "jane@example.com",
		OrderID:   42,
		LineItems: []domain.LineItem{{ID: 1}},
	}, false)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decode(t, rec)

	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, f.enroller.calls)
	assert.Zero(t, f.orders.calls)
	assert.Zero(t, f.meta.calls)
}

func TestHandler_PartialFailureIsolated(t *testing.T) {
	// Scenario D: one of two revocations fails remotely.
	pmap := productmap.Map{
		"SKU-A": {ProductID: "prod-a", ProductType: "course"},
		"SKU-B": {ProductID: "prod-b", ProductType: "bundle"},
	}
	f := newFixture(t, pmap)
	f.enroller.failFor["prod-a"] = errors.New("learnworlds 502 Bad Gateway")

	skuA, skuB := "SKU-A", "SKU-B"
	rec := f.deliver(t, domain.TopicOrdersCancelled, domain.Event{
		Email: "jane@example.com",
		LineItems: []domain.LineItem{
			{ID: 1, SKU: &skuA},
			{ID: 2, SKU: &skuB},
		},
	}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)

	assert.True(t, resp.OK, "per-item failures never fail the request")
	require.Len(t, resp.Actions, 2)
	assert.Equal(t, ActionFailed, resp.Actions[0].Status)
	assert.Contains(t, resp.Actions[0].Error, "502")
	assert.Equal(t, ActionUnenrolled, resp.Actions[1].Status)
	assert.Len(t, f.enroller.calls, 2, "the failure did not abort the batch")
}

func TestHandler_ActionOrderMirrorsInput(t *testing.T) {
	pmap := productmap.Map{"SKU-A": {ProductID: "prod-a", ProductType: "course"}}
	f := newFixture(t, pmap)

	skuA, skuX := "SKU-A", "SKU-X"
	rec := f.deliver(t, domain.TopicOrdersCancelled, domain.Event{
		Email: "jane@example.com",
		LineItems: []domain.LineItem{
			{ID: 1, SKU: &skuX},
			{ID: 2, SKU: &skuA},
			{ID: 3},
		},
	}, true)

	resp := decode(t, rec)
	require.Len(t, resp.Actions, 3)
	assert.Equal(t, int64(1), resp.Actions[0].Item.ID)
	assert.Equal(t, ActionUnmapped, resp.Actions[0].Status)
	assert.Equal(t, int64(2), resp.Actions[1].Item.ID)
	assert.Equal(t, ActionUnenrolled, resp.Actions[1].Status)
	assert.Equal(t, int64(3), resp.Actions[2].Item.ID)
	assert.Equal(t, ActionUnmapped, resp.Actions[2].Status)
}

func TestHandler_TerminalClassifications(t *testing.T) {
	t.Run("unhandled topics are acknowledged and ignored", func(t *testing.T) {
		f := newFixture(t, productmap.Map{})

		rec := f.deliver(t, "products/update", domain.Event{Email: "a@example.com"}, true)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode(t, rec)
		assert.True(t, resp.OK)
		assert.Equal(t, "products/update", resp.Ignored)
		assert.Empty(t, f.enroller.calls)
		assert.Zero(t, f.orders.calls)
	})

	t.Run("no derivable email is a skip, not an error", func(t *testing.T) {
		f := newFixture(t, productmap.Map{})

		rec := f.deliver(t, domain.TopicOrdersCancelled, domain.Event{
			LineItems: []domain.LineItem{{ID: 1}},
		}, true)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode(t, rec)
		assert.True(t, resp.OK)
		assert.Equal(t, "no_email", resp.Skipped)
		assert.Empty(t, f.enroller.calls)
	})

	t.Run("orders/updated without cancelled_at is ignored", func(t *testing.T) {
		f := newFixture(t, productmap.Map{})

		rec := f.deliver(t, domain.TopicOrdersUpdated, domain.Event{
			Email:     "a@example.com",
			LineItems: []domain.LineItem{{ID: 1}},
		}, true)

		resp := decode(t, rec)
		assert.Equal(t, domain.TopicOrdersUpdated, resp.Ignored)
		assert.Empty(t, f.enroller.calls)
	})

	t.Run("zero line items still yields a structured response", func(t *testing.T) {
		f := newFixture(t, productmap.Map{})

		rec := f.deliver(t, domain.TopicOrdersCancelled, domain.Event{
			Email: "a@example.com",
		}, true)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode(t, rec)
		assert.True(t, resp.OK)
		assert.Empty(t, resp.Actions)
	})
}

func TestHandler_MalformedPayload(t *testing.T) {
	f := newFixture(t, productmap.Map{})

	body := []byte(`{"email": "broken`)
	req := httptest.NewRequest(http.MethodPost, "/api/shopify-webhook", bytes.NewReader(body))
	req.Header.Set(HeaderTopic, domain.TopicOrdersCancelled)
	req.Header.Set(HeaderHmac, Sign(body, testSecret))

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, f.enroller.calls)
}

func TestHandler_MissingEnrollerFailsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := logger.New("error")

	h := NewHandler(
		testSecret,
		domain.NewClassifier(&mockOrders{}, l),
		resolver.New(productmap.Map{"SKU-A": {ProductID: "a", ProductType: "course"}}, &mockMetadata{}, l),
		nil,
		l,
	)
	engine := gin.New()
	engine.POST("/api/shopify-webhook", h.Handle)

	sku := "SKU-A"
	body, _ := json.Marshal(domain.Event{
		Email:     "a@example.com",
		LineItems: []domain.LineItem{{ID: 1, SKU: &sku}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/shopify-webhook", bytes.NewReader(body))
	req.Header.Set(HeaderTopic, domain.TopicOrdersCancelled)
	req.Header.Set(HeaderHmac, Sign(body, testSecret))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_SharedVariantFetchedOnce(t *testing.T) {
	// Two unmapped line items on the same variant: one metafield lookup.
	f := newFixture(t, productmap.Map{})

	variant := int64(22)
	rec := f.deliver(t, domain.TopicOrdersCancelled, domain.Event{
		Email: "jane@example.com",
		LineItems: []domain.LineItem{
			{ID: 1, VariantID: &variant},
			{ID: 2, VariantID: &variant},
		},
	}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	require.Len(t, resp.Actions, 2)
	assert.Equal(t, 1, f.meta.calls, "variant metafields memoized per request")
}
