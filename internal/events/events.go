// Package events publishes booking lifecycle events. Contract and invoice
// generation consume them, so every amount is carried as a flat field.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
)

type Type string

const (
	TypeBookingCreated   Type = "booking.created"
	TypeBookingConfirmed Type = "booking.confirmed"
	TypeRentalStarted    Type = "rental.started"
	TypeRentalCompleted  Type = "rental.completed"
	TypeBookingCancelled Type = "booking.cancelled"
)

type BookingEvent struct {
	Type             Type      `json:"type"`
	BookingID        string    `json:"booking_id"`
	Reference        string    `json:"reference"`
	CustomerID       string    `json:"customer_id"`
	GroupID          string    `json:"group_id"`
	VehicleID        string    `json:"vehicle_id,omitempty"`
	PickupDate       string    `json:"pickup_date"`
	ReturnDate       string    `json:"return_date"`
	PickupLocationID string    `json:"pickup_location_id"`
	ReturnLocationID string    `json:"return_location_id"`
	Status           string    `json:"status"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`

	Days              int              `json:"days,omitempty"`
	BasePrice         *decimal.Decimal `json:"base_price,omitempty"`
	ExtrasTotal       *decimal.Decimal `json:"extras_total,omitempty"`
	LocationSurcharge *decimal.Decimal `json:"location_surcharge,omitempty"`
	DiscountAmount    *decimal.Decimal `json:"discount_amount,omitempty"`
	Subtotal          *decimal.Decimal `json:"subtotal,omitempty"`
	TaxAmount         *decimal.Decimal `json:"tax_amount,omitempty"`
	Total             *decimal.Decimal `json:"total,omitempty"`

	ExtraKmCharge  *decimal.Decimal `json:"extra_km_charge,omitempty"`
	FuelCharge     *decimal.Decimal `json:"fuel_charge,omitempty"`
	CleaningCharge *decimal.Decimal `json:"cleaning_charge,omitempty"`
	DamageCharge   *decimal.Decimal `json:"damage_charge,omitempty"`
	FinalTotal     *decimal.Decimal `json:"final_total,omitempty"`
}

// NewBookingEvent snapshots b. Quote and settlement fields are set only once
// the booking carries them.
func NewBookingEvent(t Type, b *domain.Booking, currency string, at time.Time) BookingEvent {
	e := BookingEvent{
		Type:             t,
		BookingID:        b.ID,
		Reference:        b.Reference,
		CustomerID:       b.CustomerID,
		GroupID:          b.GroupID,
		PickupDate:       b.Range.Start.Format(domain.DateLayout),
		ReturnDate:       b.Range.End.Format(domain.DateLayout),
		PickupLocationID: b.PickupLocationID,
		ReturnLocationID: b.ReturnLocationID,
		Status:           string(b.Status),
		Currency:         currency,
		OccurredAt:       at.UTC(),
	}
	if b.VehicleID != nil {
		e.VehicleID = *b.VehicleID
	}
	if q := b.Quote; q != nil {
		e.Days = q.Days
		e.BasePrice = ptr(q.BasePrice)
		e.ExtrasTotal = ptr(q.ExtrasTotal)
		e.LocationSurcharge = ptr(q.LocationSurcharge)
		e.DiscountAmount = ptr(q.DiscountAmount)
		e.Subtotal = ptr(q.Subtotal)
		e.TaxAmount = ptr(q.TaxAmount)
		e.Total = ptr(q.Total)
	}
	if s := b.Settlement; s != nil {
		e.ExtraKmCharge = ptr(s.Adjustment.ExtraKmCharge)
		e.FuelCharge = ptr(s.Adjustment.FuelCharge)
		e.CleaningCharge = ptr(s.Adjustment.CleaningCharge)
		e.DamageCharge = ptr(s.Adjustment.DamageCharge)
		e.FinalTotal = ptr(s.FinalTotal)
	}
	return e
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

type Publisher interface {
	Publish(ctx context.Context, e BookingEvent) error
}

// NopPublisher drops events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BookingEvent) error { return nil }

type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher writes to topic, keyed by booking ID so the events of one
// booking stay ordered on one partition.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e BookingEvent) error {
	msg, err := toMessage(e)
	if err != nil {
		return err
	}
	logger.ExternalServiceCall("kafka", "publish", "type", e.Type, "bookingID", e.BookingID)
	err = p.writer.WriteMessages(ctx, msg)
	logger.ExternalServiceResult("kafka", "publish", err, "type", e.Type, "bookingID", e.BookingID)
	if err != nil {
		return fmt.Errorf("failed to write booking event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func toMessage(e BookingEvent) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal booking event: %w", err)
	}
	return kafka.Message{
		Key:     []byte(e.BookingID),
		Value:   data,
		Time:    e.OccurredAt,
		Headers: []kafka.Header{{Key: "event-type", Value: []byte(e.Type)}},
	}, nil
}
