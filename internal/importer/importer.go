package importer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/models"
)

// PriceListWriter is the slice of the price-list store the importer
// writes through. Upserts merge on pcode, never append duplicates.
type PriceListWriter interface {
	UpsertItem(ctx context.Context, customerID string, item models.PriceListItem) error
	RemoveItem(ctx context.Context, customerID, pcode string) error
}

// Event is one price-list sync message from the ERP export job.
type Event struct {
	Action     string               `json:"action"` // "upsert" or "delete"
	CustomerID string               `json:"customerId"`
	Item       models.PriceListItem `json:"item"`
}

// maxRetryWait caps the backoff between attempts to apply an event
// whose storage write keeps failing.
const maxRetryWait = 30 * time.Second

// Consumer applies price-list sync events from Kafka. The ERP batch
// import talks to us through this topic instead of exec'ing scripts
// against the database.
type Consumer struct {
	reader     *kafka.Reader
	priceLists PriceListWriter
	retryWait  time.Duration
}

func NewConsumer(brokers []string, topic, groupID string, priceLists PriceListWriter) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return &Consumer{reader: reader, priceLists: priceLists, retryWait: time.Second}
}

// Run consumes until ctx is cancelled. Malformed events are logged and
// committed so they can't wedge the partition; storage failures retry
// the same event in place. The group offset is a single watermark per
// partition, so fetching past an unapplied event and committing a later
// one would discard the failed event for good.
func (c *Consumer) Run(ctx context.Context) error {
	log.Info().Str("topic", c.reader.Config().Topic).Msg("price-list sync consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		if err := c.applyWithRetry(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			log.Error().Err(err).Msg("failed to commit price-list event")
		}
	}
}

// applyWithRetry applies one event, retrying storage failures with
// capped exponential backoff until the write lands or ctx is
// cancelled. Validation failures are logged and treated as applied so
// a poison message can't wedge the partition.
func (c *Consumer) applyWithRetry(ctx context.Context, msg kafka.Message) error {
	wait := c.retryWait

	for {
		err := c.Apply(ctx, msg.Value)
		if err == nil {
			return nil
		}
		if apperr.IsKind(err, apperr.KindValidation) {
			log.Warn().Err(err).Int64("offset", msg.Offset).Msg("skipping malformed price-list event")
			return nil
		}

		log.Error().Err(err).Int64("offset", msg.Offset).Dur("retryIn", wait).Msg("failed to apply price-list event, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if wait *= 2; wait > maxRetryWait {
			wait = maxRetryWait
		}
	}
}

// Apply decodes and applies a single event payload.
func (c *Consumer) Apply(ctx context.Context, payload []byte) error {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return apperr.Wrap(apperr.KindValidation, "malformed price-list event", err)
	}
	if ev.CustomerID == "" {
		return apperr.New(apperr.KindValidation, "price-list event missing customerId")
	}

	switch ev.Action {
	case "upsert":
		if ev.Item.Pcode == "" || ev.Item.ItemName == "" {
			return apperr.New(apperr.KindValidation, "price-list upsert missing pcode or itemName")
		}
		return c.priceLists.UpsertItem(ctx, ev.CustomerID, ev.Item)
	case "delete":
		if ev.Item.Pcode == "" {
			return apperr.New(apperr.KindValidation, "price-list delete missing pcode")
		}
		err := c.priceLists.RemoveItem(ctx, ev.CustomerID, ev.Item.Pcode)
		if apperr.IsKind(err, apperr.KindNotFound) {
			// Deleting something already gone is fine for a sync job.
			return nil
		}
		return err
	default:
		return apperr.Newf(apperr.KindValidation, "unknown price-list event action %q", ev.Action)
	}
}

// Close shuts the underlying reader down.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
