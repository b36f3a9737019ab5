package order

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/models"
	"github.com/oceanharvest/storefront-api/internal/pricing"
)

type fakeLineStore struct {
	lines     []models.OrderLine
	insertErr error
}

func (f *fakeLineStore) InsertLines(_ context.Context, lines []models.OrderLine) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.lines = append(f.lines, lines...)
	return nil
}

func (f *fakeLineStore) OrderIDExists(_ context.Context, orderID string) (bool, error) {
	for _, l := range f.lines {
		if l.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLineStore) UpdateStatus(_ context.Context, orderID, status string) (int64, error) {
	var matched int64
	for i := range f.lines {
		if f.lines[i].OrderID == orderID {
			f.lines[i].Status = status
			matched++
		}
	}
	return matched, nil
}

func (f *fakeLineStore) MarkPaid(_ context.Context, orderID, status string) (int64, error) {
	var matched int64
	for i := range f.lines {
		if f.lines[i].OrderID == orderID {
			f.lines[i].Payment = true
			f.lines[i].Status = status
			matched++
		}
	}
	return matched, nil
}

func (f *fakeLineStore) DeleteOrder(_ context.Context, orderID string) (int64, error) {
	var kept []models.OrderLine
	var deleted int64
	for _, l := range f.lines {
		if l.OrderID == orderID {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	f.lines = kept
	return deleted, nil
}

func (f *fakeLineStore) ListAll(_ context.Context) ([]models.OrderLine, error) {
	return f.lines, nil
}

func (f *fakeLineStore) ListByCustomer(_ context.Context, customerID string) ([]models.OrderLine, error) {
	var out []models.OrderLine
	for _, l := range f.lines {
		if l.CustomerID == customerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLineStore) DeleteUnpaidBefore(_ context.Context, method string, cutoff time.Time) (int64, error) {
	var kept []models.OrderLine
	var deleted int64
	for _, l := range f.lines {
		if l.PaymentMethod == method && !l.Payment && l.Date.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	f.lines = kept
	return deleted, nil
}

type fakeCatalogue struct {
	products map[string]*models.Product
}

func (f *fakeCatalogue) GetByID(_ context.Context, id string) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, apperr.New(apperr.KindNotFound, "Product not found")
}

type fakeResolver struct {
	prices map[string]float64
}

func (f *fakeResolver) Resolve(_ context.Context, _, pcode string) (pricing.ResolvedPrice, error) {
	price, ok := f.prices[pcode]
	if !ok {
		return pricing.ResolvedPrice{}, apperr.New(apperr.KindNotFound, "Product not found")
	}
	return pricing.ResolvedPrice{UnitPrice: price, Source: pricing.SourceOverride}, nil
}

type fakeClearer struct {
	cleared  []string
	clearErr error
}

func (f *fakeClearer) Clear(_ context.Context, userID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, userID)
	return nil
}

func testUser() *models.User {
	return &models.User{
		ID:         primitive.NewObjectID(),
		Name:       "Lim Trading",
		CustomerID: "CUST001",
	}
}

func testInfo() DeliveryInfo {
	return DeliveryInfo{
		Name:       "Lim Trading",
		Email:      "orders@limtrading.example",
		Phone:      "91234567",
		Address:    "12 Harbour Rd",
		PostalCode: "049321",
	}
}

func newTestService(prices map[string]float64) (*Service, *fakeLineStore, *fakeClearer) {
	lines := &fakeLineStore{}
	catalogue := &fakeCatalogue{products: map[string]*models.Product{
		"item1": {Pcode: "P1", ItemName: "Jasmine Rice 5kg"},
		"item2": {Pcode: "P2", ItemName: "Soy Sauce 500ml"},
	}}
	clearer := &fakeClearer{}
	svc := NewService(lines, catalogue, &fakeResolver{prices: prices}, clearer)
	return svc, lines, clearer
}

func TestPlaceEmptyCart(t *testing.T) {
	svc, lines, clearer := newTestService(map[string]float64{"P1": 10.00})

	_, err := svc.Place(context.Background(), testUser(), models.CartData{}, testInfo(), PaymentMethodCOD)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, lines.lines)
	assert.Empty(t, clearer.cleared)
}

func TestPlaceComputesTotalsWithGST(t *testing.T) {
	svc, lines, clearer := newTestService(map[string]float64{"P1": 10.00})
	user := testUser()

	snapshot := models.CartData{"item1": {"KG": 2}}
	placed, err := svc.Place(context.Background(), user, snapshot, testInfo(), PaymentMethodCOD)
	require.NoError(t, err)

	assert.Equal(t, 20.00, placed.SubtotalPrice)
	assert.Equal(t, 21.80, placed.TotalPrice)
	assert.Equal(t, 1, placed.LineCount)

	require.Len(t, lines.lines, 1)
	line := lines.lines[0]
	assert.Equal(t, placed.OrderID, line.OrderID)
	assert.Equal(t, "P1", line.Pcode)
	assert.Equal(t, "KG", line.UOM)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 10.00, line.UnitPrice)
	assert.Equal(t, 20.00, line.OrderPrice)
	assert.Equal(t, StatusPlaced, line.Status)
	assert.Equal(t, []string{user.ID.Hex()}, clearer.cleared)
}

func TestPlaceSharesOrderFieldsAcrossLines(t *testing.T) {
	svc, lines, _ := newTestService(map[string]float64{"P1": 10.00, "P2": 3.20})

	snapshot := models.CartData{
		"item1": {"KG": 2, "CTN": 1},
		"item2": {"BTL": 3},
	}
	placed, err := svc.Place(context.Background(), testUser(), snapshot, testInfo(), PaymentMethodCOD)
	require.NoError(t, err)
	require.Len(t, lines.lines, 3)

	for _, line := range lines.lines {
		assert.Equal(t, placed.OrderID, line.OrderID)
		assert.Equal(t, placed.SubtotalPrice, line.SubtotalPrice)
		assert.Equal(t, placed.TotalPrice, line.TotalPrice)
		assert.Equal(t, StatusPlaced, line.Status)
		assert.Equal(t, "049321", line.PostalCode)
	}
}

func TestPlaceRejectsNonFinitePrice(t *testing.T) {
	svc, lines, clearer := newTestService(map[string]float64{"P1": math.NaN()})

	snapshot := models.CartData{"item1": {"KG": 2}}
	_, err := svc.Place(context.Background(), testUser(), snapshot, testInfo(), PaymentMethodCOD)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	// No partial orders, no cart clear.
	assert.Empty(t, lines.lines)
	assert.Empty(t, clearer.cleared)
}

func TestPlaceInsertFailureKeepsCart(t *testing.T) {
	svc, lines, clearer := newTestService(map[string]float64{"P1": 10.00})
	lines.insertErr = errors.New("mongo down")

	snapshot := models.CartData{"item1": {"KG": 2}}
	_, err := svc.Place(context.Background(), testUser(), snapshot, testInfo(), PaymentMethodCOD)
	require.Error(t, err)
	assert.Empty(t, clearer.cleared)
}

func TestPlaceClearFailureDoesNotRollBack(t *testing.T) {
	svc, lines, clearer := newTestService(map[string]float64{"P1": 10.00})
	clearer.clearErr = errors.New("mongo down")

	snapshot := models.CartData{"item1": {"KG": 2}}
	placed, err := svc.Place(context.Background(), testUser(), snapshot, testInfo(), PaymentMethodCOD)
	require.NoError(t, err)
	assert.NotEmpty(t, placed.OrderID)
	assert.Len(t, lines.lines, 1)
}

func TestPlaceStripeDefersPaymentAndCartClear(t *testing.T) {
	svc, lines, clearer := newTestService(map[string]float64{"P1": 10.00})

	snapshot := models.CartData{"item1": {"KG": 2}}
	_, err := svc.Place(context.Background(), testUser(), snapshot, testInfo(), PaymentMethodStripe)
	require.NoError(t, err)

	require.Len(t, lines.lines, 1)
	assert.Equal(t, StatusPaymentPending, lines.lines[0].Status)
	assert.False(t, lines.lines[0].Payment)
	assert.Empty(t, clearer.cleared)
}

func TestSetStatusUpdatesEveryLine(t *testing.T) {
	svc, lines, _ := newTestService(map[string]float64{"P1": 10.00, "P2": 3.20})

	snapshot := models.CartData{"item1": {"KG": 1}, "item2": {"BTL": 1}}
	placed, err := svc.Place(context.Background(), testUser(), snapshot, testInfo(), PaymentMethodCOD)
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(context.Background(), placed.OrderID, StatusShipped))
	for _, line := range lines.lines {
		assert.Equal(t, StatusShipped, line.Status)
	}
}

func TestSetStatusRejectsUnknownLabel(t *testing.T) {
	svc, _, _ := newTestService(nil)

	err := svc.SetStatus(context.Background(), "ORD-1", "Teleported")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSetStatusMissingOrder(t *testing.T) {
	svc, _, _ := newTestService(nil)

	err := svc.SetStatus(context.Background(), "ORD-404", StatusShipped)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestConfirmPaymentFlipsAllLinesAndClearsCart(t *testing.T) {
	svc, lines, clearer := newTestService(map[string]float64{"P1": 10.00})
	user := testUser()

	snapshot := models.CartData{"item1": {"KG": 2, "CTN": 1}}
	placed, err := svc.Place(context.Background(), user, snapshot, testInfo(), PaymentMethodStripe)
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmPayment(context.Background(), placed.OrderID, user.ID.Hex()))
	for _, line := range lines.lines {
		assert.True(t, line.Payment)
		assert.Equal(t, StatusPlaced, line.Status)
	}
	assert.Equal(t, []string{user.ID.Hex()}, clearer.cleared)
}

func TestFailPaymentIsIdempotent(t *testing.T) {
	svc, lines, _ := newTestService(map[string]float64{"P1": 10.00})

	snapshot := models.CartData{"item1": {"KG": 2}}
	placed, err := svc.Place(context.Background(), testUser(), snapshot, testInfo(), PaymentMethodStripe)
	require.NoError(t, err)

	require.NoError(t, svc.FailPayment(context.Background(), placed.OrderID))
	assert.Empty(t, lines.lines)

	// The second failure callback finds nothing and still succeeds.
	require.NoError(t, svc.FailPayment(context.Background(), placed.OrderID))
}

func TestSweepUnpaidOnlyTouchesStaleGatewayOrders(t *testing.T) {
	svc, lines, _ := newTestService(nil)
	old := time.Now().Add(-48 * time.Hour)

	lines.lines = []models.OrderLine{
		{OrderID: "ORD-1", PaymentMethod: PaymentMethodStripe, Payment: false, Date: old},
		{OrderID: "ORD-2", PaymentMethod: PaymentMethodStripe, Payment: true, Date: old},
		{OrderID: "ORD-3", PaymentMethod: PaymentMethodCOD, Payment: false, Date: old},
		{OrderID: "ORD-4", PaymentMethod: PaymentMethodStripe, Payment: false, Date: time.Now()},
	}

	deleted, err := svc.SweepUnpaid(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Len(t, lines.lines, 3)
}

func TestGroupFoldsLinesByOrderID(t *testing.T) {
	lines := []models.OrderLine{
		{OrderID: "ORD-2", Pcode: "P9", Status: StatusPlaced, SubtotalPrice: 5, TotalPrice: 5.45},
		{OrderID: "ORD-1", Pcode: "P1", Status: StatusShipped, SubtotalPrice: 20, TotalPrice: 21.80},
		{OrderID: "ORD-1", Pcode: "P2", Status: StatusShipped, SubtotalPrice: 20, TotalPrice: 21.80},
	}

	groups := Group(lines)
	require.Len(t, groups, 2)
	assert.Equal(t, "ORD-2", groups[0].OrderID)
	assert.Len(t, groups[0].Items, 1)
	assert.Equal(t, "ORD-1", groups[1].OrderID)
	assert.Len(t, groups[1].Items, 2)
	assert.Equal(t, 21.80, groups[1].TotalPrice)
}
