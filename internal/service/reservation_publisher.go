// Package service wires the booking engine to external collaborators,
// currently the RabbitMQ event publisher.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/coworking-reservation/internal/model"
	"github.com/iliyamo/coworking-reservation/internal/queue"
	"github.com/iliyamo/coworking-reservation/internal/repository"
)

// ReservationPublisher emits reservation lifecycle events to RabbitMQ.
// It satisfies the booking engine's publisher contract: a publish
// failure is logged and swallowed, the reservation operation that
// produced the event has already committed.
type ReservationPublisher struct {
	url       string
	resources *repository.ResourceRepo // optional, enriches events with the resource name
}

// NewReservationPublisher builds a publisher for the given broker URL.
// resources may be nil.
func NewReservationPublisher(url string, resources *repository.ResourceRepo) *ReservationPublisher {
	return &ReservationPublisher{url: url, resources: resources}
}

func (p *ReservationPublisher) ReservationCreated(ctx context.Context, r *model.Reservation) {
	p.publish(ctx, queue.ReservationCreatedQueue, "created", r)
}

func (p *ReservationPublisher) ReservationConfirmed(ctx context.Context, r *model.Reservation) {
	p.publish(ctx, queue.ReservationConfirmedQueue, "confirmed", r)
}

func (p *ReservationPublisher) ReservationCancelled(ctx context.Context, r *model.Reservation) {
	p.publish(ctx, queue.ReservationCancelledQueue, "cancelled", r)
}

func (p *ReservationPublisher) publish(ctx context.Context, queueName, kind string, r *model.Reservation) {
	ev := queue.ReservationEvent{
		Kind:             kind,
		ReservationID:    r.ID,
		UserID:           r.UserID,
		ResourceID:       r.ResourceID,
		StartsAt:         r.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:           r.EndsAt.UTC().Format(time.RFC3339),
		ParticipantCount: r.ParticipantCount,
		Status:           r.Status,
		BasePriceCents:   r.BasePriceCents,
		FinalPriceCents:  r.FinalPriceCents,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if r.PromoCode != nil {
		ev.PromoCode = *r.PromoCode
	}
	if p.resources != nil {
		if res, err := p.resources.GetByID(ctx, r.ResourceID); err == nil {
			ev.ResourceName = res.Name
		}
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
	}
}
