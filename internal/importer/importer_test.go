package importer

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/models"
)

type fakeWriter struct {
	items map[string]map[string]models.PriceListItem
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{items: map[string]map[string]models.PriceListItem{}}
}

func (f *fakeWriter) UpsertItem(_ context.Context, customerID string, item models.PriceListItem) error {
	if f.items[customerID] == nil {
		f.items[customerID] = map[string]models.PriceListItem{}
	}
	f.items[customerID][item.Pcode] = item
	return nil
}

func (f *fakeWriter) RemoveItem(_ context.Context, customerID, pcode string) error {
	list, ok := f.items[customerID]
	if !ok {
		return apperr.New(apperr.KindNotFound, "Price list not found")
	}
	if _, ok := list[pcode]; !ok {
		return apperr.New(apperr.KindNotFound, "Item not found in price list")
	}
	delete(list, pcode)
	return nil
}

func TestApplyUpsert(t *testing.T) {
	w := newFakeWriter()
	c := &Consumer{priceLists: w}

	payload := []byte(`{"action":"upsert","customerId":"CUST001","item":{"pcode":"P1","itemName":"Jasmine Rice 5kg","price":10.5}}`)
	require.NoError(t, c.Apply(context.Background(), payload))

	item, ok := w.items["CUST001"]["P1"]
	require.True(t, ok)
	assert.Equal(t, "Jasmine Rice 5kg", item.ItemName)
	assert.Equal(t, 10.5, item.Price)
}

func TestApplyUpsertOverwritesExisting(t *testing.T) {
	w := newFakeWriter()
	c := &Consumer{priceLists: w}

	first := []byte(`{"action":"upsert","customerId":"CUST001","item":{"pcode":"P1","itemName":"Jasmine Rice 5kg","price":10.5}}`)
	require.NoError(t, c.Apply(context.Background(), first))

	second := []byte(`{"action":"upsert","customerId":"CUST001","item":{"pcode":"P1","itemName":"Jasmine Rice 5kg","price":9.8}}`)
	require.NoError(t, c.Apply(context.Background(), second))

	require.Len(t, w.items["CUST001"], 1)
	assert.Equal(t, 9.8, w.items["CUST001"]["P1"].Price)
}

func TestApplyDelete(t *testing.T) {
	w := newFakeWriter()
	c := &Consumer{priceLists: w}

	upsert := []byte(`{"action":"upsert","customerId":"CUST001","item":{"pcode":"P1","itemName":"Jasmine Rice 5kg","price":10.5}}`)
	require.NoError(t, c.Apply(context.Background(), upsert))

	del := []byte(`{"action":"delete","customerId":"CUST001","item":{"pcode":"P1"}}`)
	require.NoError(t, c.Apply(context.Background(), del))
	assert.Empty(t, w.items["CUST001"])
}

func TestApplyDeleteMissingIsNoOp(t *testing.T) {
	c := &Consumer{priceLists: newFakeWriter()}

	del := []byte(`{"action":"delete","customerId":"CUST001","item":{"pcode":"P1"}}`)
	assert.NoError(t, c.Apply(context.Background(), del))
}

func TestApplyMalformedJSON(t *testing.T) {
	c := &Consumer{priceLists: newFakeWriter()}

	err := c.Apply(context.Background(), []byte(`{not json`))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestApplyMissingCustomerID(t *testing.T) {
	c := &Consumer{priceLists: newFakeWriter()}

	err := c.Apply(context.Background(), []byte(`{"action":"upsert","item":{"pcode":"P1","itemName":"X"}}`))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestApplyUpsertMissingFields(t *testing.T) {
	w := newFakeWriter()
	c := &Consumer{priceLists: w}

	err := c.Apply(context.Background(), []byte(`{"action":"upsert","customerId":"CUST001","item":{"pcode":"P1"}}`))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, w.items)
}

func TestApplyUnknownAction(t *testing.T) {
	c := &Consumer{priceLists: newFakeWriter()}

	err := c.Apply(context.Background(), []byte(`{"action":"truncate","customerId":"CUST001"}`))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

// flakyWriter fails its first n upserts with a storage error, then
// delegates to the real fake.
type flakyWriter struct {
	*fakeWriter
	failures int
	attempts int
}

func (f *flakyWriter) UpsertItem(ctx context.Context, customerID string, item models.PriceListItem) error {
	f.attempts++
	if f.attempts <= f.failures {
		return apperr.Wrap(apperr.KindUpstream, "failed to update price list", context.DeadlineExceeded)
	}
	return f.fakeWriter.UpsertItem(ctx, customerID, item)
}

func upsertMessage() kafka.Message {
	return kafka.Message{
		Offset: 7,
		Value:  []byte(`{"action":"upsert","customerId":"CUST001","item":{"pcode":"P1","itemName":"Jasmine Rice 5kg","price":10.5}}`),
	}
}

func TestApplyWithRetryRecoversFromStorageFailure(t *testing.T) {
	w := &flakyWriter{fakeWriter: newFakeWriter(), failures: 2}
	c := &Consumer{priceLists: w, retryWait: time.Millisecond}

	require.NoError(t, c.applyWithRetry(context.Background(), upsertMessage()))
	assert.Equal(t, 3, w.attempts)
	assert.Contains(t, w.items["CUST001"], "P1")
}

func TestApplyWithRetrySkipsMalformedEvents(t *testing.T) {
	w := &flakyWriter{fakeWriter: newFakeWriter(), failures: 100}
	c := &Consumer{priceLists: w, retryWait: time.Millisecond}

	// A malformed event never reaches storage and is not retried.
	msg := kafka.Message{Value: []byte(`{not json`)}
	require.NoError(t, c.applyWithRetry(context.Background(), msg))
	assert.Zero(t, w.attempts)
}

func TestApplyWithRetryStopsOnCancel(t *testing.T) {
	w := &flakyWriter{fakeWriter: newFakeWriter(), failures: 100}
	c := &Consumer{priceLists: w, retryWait: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.applyWithRetry(ctx, upsertMessage())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, w.attempts)
}
