package checkout

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younes-dz/consolestore/internal/cart"
)

type mockOrderAPI struct {
	lastPayload *OrderPayload
	calls       int
	err         error
	onCreate    func()
}

func (m *mockOrderAPI) CreateOrder(_ context.Context, payload OrderPayload) error {
	m.calls++
	m.lastPayload = &payload
	if m.onCreate != nil {
		m.onCreate()
	}
	return m.err
}

type nopStore struct{}

func (nopStore) Load() []cart.LineItem { return nil }
func (nopStore) Save([]cart.LineItem)  {}

func newCartWith(t *testing.T, items ...cart.LineItem) *cart.Container {
	t.Helper()
	c := cart.NewContainer(nopStore{})
	for _, it := range items {
		require.NoError(t, c.Add(it))
	}
	return c
}

func line(id string, qty int, price string) cart.LineItem {
	return cart.LineItem{
		ID:       id,
		Name:     "console " + id,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		Stock:    100,
	}
}

func pickupForm() Form {
	return Form{
		FullName:    "Yacine Brahimi",
		Phone:       "0551234567",
		Fulfillment: FulfillmentPickup,
	}
}

func deliveryForm() Form {
	return Form{
		FullName:    "Yacine Brahimi",
		Phone:       "0551234567",
		Fulfillment: FulfillmentDelivery,
		WilayaID:    13,
		Commune:     "Mansourah",
		Address:     "12 rue des Frères Benyoucef",
	}
}

func TestComputeTotal(t *testing.T) {
	items := []cart.LineItem{
		line("1", 2, "5000.00"),
		line("2", 1, "12000.50"),
	}

	want := decimal.RequireFromString("22000.50")
	assert.True(t, want.Equal(ComputeTotal(items)))

	// Sum is commutative over line order.
	reversed := []cart.LineItem{items[1], items[0]}
	assert.True(t, ComputeTotal(items).Equal(ComputeTotal(reversed)))
}

func TestComputeTotal_Empty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(ComputeTotal(nil)))
}

func TestDeliveryFee(t *testing.T) {
	tests := []struct {
		name     string
		f        Fulfillment
		wilayaID int
		want     string
		wantErr  error
	}{
		{name: "pickup is free", f: FulfillmentPickup, wilayaID: 13, want: "0"},
		{name: "delivery without region is free", f: FulfillmentDelivery, wilayaID: 0, want: "0"},
		{name: "delivery to Tlemcen", f: FulfillmentDelivery, wilayaID: 13, want: "400"},
		{name: "delivery to Alger", f: FulfillmentDelivery, wilayaID: 16, want: "500"},
		{name: "delivery to Tamanrasset", f: FulfillmentDelivery, wilayaID: 11, want: "1350"},
		{name: "unknown region", f: FulfillmentDelivery, wilayaID: 99, wantErr: ErrUnknownWilaya},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := DeliveryFee(tt.f, tt.wilayaID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(fee), "got %s", fee)
		})
	}
}

func TestRegions_SortedAndComplete(t *testing.T) {
	regions := Regions()
	require.Len(t, regions, 58)
	for i := 1; i < len(regions); i++ {
		assert.Less(t, regions[i-1].ID, regions[i].ID)
	}
}

func TestForm_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Form)
		wantField string
	}{
		{name: "valid pickup", mutate: func(f *Form) { *f = pickupForm() }},
		{name: "valid delivery", mutate: func(f *Form) {}},
		{name: "name too short", mutate: func(f *Form) { f.FullName = "ab" }, wantField: "full_name"},
		{name: "name with digits", mutate: func(f *Form) { f.FullName = "Yacine 99" }, wantField: "full_name"},
		{name: "name with diacritics is valid", mutate: func(f *Form) { f.FullName = "Ramzi Aït Ahmed" }},
		{name: "phone too short", mutate: func(f *Form) { f.Phone = "055123456" }, wantField: "phone"},
		{name: "phone bad prefix", mutate: func(f *Form) { f.Phone = "0451234567" }, wantField: "phone"},
		{name: "unknown fulfillment", mutate: func(f *Form) { f.Fulfillment = "drone" }, wantField: "type"},
		{name: "delivery without region", mutate: func(f *Form) { f.WilayaID = 0 }, wantField: "wilaya"},
		{name: "delivery unknown region", mutate: func(f *Form) { f.WilayaID = 77 }, wantField: "wilaya"},
		{name: "commune too short", mutate: func(f *Form) { f.Commune = "a" }, wantField: "commune"},
		{name: "address too short", mutate: func(f *Form) { f.Address = "12" }, wantField: "adresse"},
		{
			name: "pickup skips region fields",
			mutate: func(f *Form) {
				*f = pickupForm()
				f.WilayaID = 0
				f.Commune = ""
				f.Address = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := deliveryForm()
			tt.mutate(&form)

			err := form.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestSubmit_EmptyCartBlocksBeforeNetwork(t *testing.T) {
	orders := &mockOrderAPI{}
	agg := NewAggregator(newCartWith(t), orders)

	_, err := agg.Submit(context.Background(), pickupForm())

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, orders.calls)
}

func TestSubmit_InvalidFormBlocksBeforeNetwork(t *testing.T) {
	orders := &mockOrderAPI{}
	agg := NewAggregator(newCartWith(t, line("1", 1, "5000.00")), orders)

	form := pickupForm()
	form.Phone = "not-a-phone"
	_, err := agg.Submit(context.Background(), form)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, orders.calls)
}

func TestSubmit_PickupPayload(t *testing.T) {
	orders := &mockOrderAPI{}
	c := newCartWith(t, line("3", 2, "5000.00"))
	agg := NewAggregator(c, orders)

	conf, err := agg.Submit(context.Background(), pickupForm())
	require.NoError(t, err)

	p := orders.lastPayload
	require.NotNil(t, p)
	assert.Equal(t, "Yacine Brahimi", p.FullName)
	assert.Equal(t, "none", p.Wilaya)
	assert.Equal(t, "none", p.Commune)
	assert.Equal(t, "none", p.Address)
	assert.Equal(t, "en cours", p.Status)
	assert.Equal(t, FulfillmentPickup, p.Type)
	assert.InDelta(t, 10000.0, p.Total, 0.001)
	require.Len(t, p.Items, 1)
	assert.Equal(t, 3, p.Items[0].ProductID)
	assert.Equal(t, 2, p.Items[0].Quantity)

	assert.True(t, decimal.RequireFromString("10000").Equal(conf.Total))
	assert.Equal(t, 1, conf.Items)
	assert.Equal(t, 0, c.Len(), "cart cleared after success")
}

func TestSubmit_DeliveryPayloadTotalExcludesFee(t *testing.T) {
	orders := &mockOrderAPI{}
	agg := NewAggregator(newCartWith(t, line("3", 1, "5000.00")), orders)

	conf, err := agg.Submit(context.Background(), deliveryForm())
	require.NoError(t, err)

	p := orders.lastPayload
	require.NotNil(t, p)
	assert.Equal(t, "13", p.Wilaya)
	assert.Equal(t, "Mansourah", p.Commune)
	assert.Equal(t, FulfillmentDelivery, p.Type)
	// The order record carries the cart subtotal; the Tlemcen fee only
	// appears in the amount confirmed to the customer.
	assert.InDelta(t, 5000.0, p.Total, 0.001)
	assert.True(t, decimal.RequireFromString("5400").Equal(conf.Total), "got %s", conf.Total)
}

func TestSubmit_ConcurrentAddSurvivesClear(t *testing.T) {
	orders := &mockOrderAPI{}
	c := newCartWith(t, line("3", 1, "5000.00"))
	agg := NewAggregator(c, orders)

	// A line lands in the cart while the upstream call is in flight.
	orders.onCreate = func() {
		require.NoError(t, c.Add(line("9", 2, "7000.00")))
	}

	conf, err := agg.Submit(context.Background(), pickupForm())
	require.NoError(t, err)
	assert.Equal(t, 1, conf.Items)

	items := c.Items()
	require.Len(t, items, 1, "late addition survives the post-submit clear")
	assert.Equal(t, "9", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestSubmit_UpstreamErrorKeepsCart(t *testing.T) {
	orders := &mockOrderAPI{err: errors.New("upstream rejected order")}
	c := newCartWith(t, line("3", 1, "5000.00"))
	agg := NewAggregator(c, orders)

	_, err := agg.Submit(context.Background(), pickupForm())

	require.Error(t, err)
	assert.Equal(t, 1, orders.calls, "exactly one attempt, no retry")
	assert.Equal(t, 1, c.Len(), "cart intact after failure")
}

func TestSubmit_NonNumericProductID(t *testing.T) {
	orders := &mockOrderAPI{}
	agg := NewAggregator(newCartWith(t, line("abc", 1, "5000.00")), orders)

	_, err := agg.Submit(context.Background(), pickupForm())

	require.Error(t, err)
	assert.Equal(t, 0, orders.calls)
}

func TestQuote(t *testing.T) {
	agg := NewAggregator(newCartWith(t, line("1", 2, "5000.00")), &mockOrderAPI{})

	q, err := agg.Quote(FulfillmentDelivery, 16)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("10000").Equal(q.Subtotal))
	assert.True(t, decimal.RequireFromString("500").Equal(q.DeliveryFee))
	assert.True(t, decimal.RequireFromString("10500").Equal(q.Total))
}

func TestQuote_UnknownRegion(t *testing.T) {
	agg := NewAggregator(newCartWith(t), &mockOrderAPI{})

	_, err := agg.Quote(FulfillmentDelivery, 404)
	require.ErrorIs(t, err, ErrUnknownWilaya)
}
