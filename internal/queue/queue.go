package queue

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"

	appErrors "github.com/dicodehq/campaign-engine/internal/errors"
	"github.com/dicodehq/campaign-engine/internal/model"
	"github.com/dicodehq/campaign-engine/internal/service"
)

// EventsQueue carries document-change events. Delivery is at-least-once:
// consumers must tolerate duplicates and reordering, which the services do
// by keying every write on a natural identity.
const EventsQueue = "document_events"

// Event is one document change with before/after snapshots.
type Event struct {
	Collection string          `json:"collection"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

// EventPublisher is what the HTTP layer needs to emit change events.
type EventPublisher interface {
	PublishChange(collection string, before, after any) error
}

// Publisher writes change events to RabbitMQ.
type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(EventsQueue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

func (p *Publisher) PublishChange(collection string, before, after any) error {
	event := Event{Collection: collection}

	if before != nil {
		b, err := json.Marshal(before)
		if err != nil {
			return err
		}
		event.Before = b
	}
	if after != nil {
		b, err := json.Marshal(after)
		if err != nil {
			return err
		}
		event.After = b
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.ch.Publish("", EventsQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

var _ EventPublisher = (*Publisher)(nil)

// Consumer dispatches change events to the engine's event-driven handlers.
type Consumer struct {
	Enrollments *service.EnrollmentService
	Completions *service.CompletionService
}

// Start declares the queue and consumes it on a background goroutine. A
// handler error leaves the delivery unacked for redelivery; malformed
// payloads are acked and dropped.
func (c *Consumer) Start(ch *amqp.Channel) error {
	q, err := ch.QueueDeclare(EventsQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			var event Event
			if err := json.Unmarshal(d.Body, &event); err != nil {
				log.Println("⚠️ invalid event payload:", err)
				d.Ack(false)
				continue
			}

			if err := c.Handle(&event); err != nil {
				log.Println("⚠️ event handling failed:", err)
				d.Nack(false, true) // requeue
				continue
			}

			d.Ack(false)
		}
	}()

	log.Println("📩 consuming document events from", q.Name)
	return nil
}

// Handle routes one event by collection. Unknown collections are ignored.
func (c *Consumer) Handle(event *Event) error {
	switch event.Collection {
	case "campaigns":
		var before, after *model.Campaign
		if len(event.Before) > 0 {
			before = &model.Campaign{}
			if err := json.Unmarshal(event.Before, before); err != nil {
				log.Println("⚠️ bad campaign snapshot, dropping event:", err)
				return nil
			}
		}
		if len(event.After) > 0 {
			after = &model.Campaign{}
			if err := json.Unmarshal(event.After, after); err != nil {
				log.Println("⚠️ bad campaign snapshot, dropping event:", err)
				return nil
			}
		}
		_, err := c.Enrollments.HandlePublish(before, after)
		return err

	case "campaign_progress":
		if len(event.After) == 0 {
			return nil
		}
		var progress model.ProgressRecord
		if err := json.Unmarshal(event.After, &progress); err != nil {
			log.Println("⚠️ bad progress snapshot, dropping event:", err)
			return nil
		}
		if err := c.Completions.HandleProgress(progress.CampaignID, progress.MemberID); err != nil {
			if _, ok := err.(*appErrors.ErrCampaignNotFound); ok {
				// The campaign was deleted after the progress write;
				// redelivering can never succeed.
				log.Println("⚠️ progress event references missing campaign", progress.CampaignID, ", dropping")
				return nil
			}
			return err
		}
		return nil
	}

	return nil
}
