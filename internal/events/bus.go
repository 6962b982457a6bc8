// internal/events/bus.go
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/streadway/amqp"
)

// Progress event types pushed to observers.
const (
	RecipientSent      = "recipient-sent"
	RecipientResponded = "recipient-responded"
	CampaignFinished   = "campaign-finished"
)

type Event struct {
	Type           string `json:"type"`
	OrganizationID int    `json:"organization_id"`
	CampaignID     int    `json:"campaign_id"`
	RecipientID    int    `json:"recipient_id,omitempty"`
}

// Bus is the fire-and-forget progress publisher. No acknowledgement is
// awaited; a failed publish is logged and dropped.
type Bus interface {
	Publish(ev Event)
}

// ====================== AMQP bus ======================

// AMQPBus fans progress events out on a topic exchange, routed by
// organization so observers can subscribe to their own scope.
type AMQPBus struct {
	Channel  *amqp.Channel
	Exchange string
}

func NewAMQPBus(ch *amqp.Channel, exchange string) (*AMQPBus, error) {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, err
	}
	return &AMQPBus{Channel: ch, Exchange: exchange}, nil
}

func (b *AMQPBus) Publish(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Println("⚠️ failed to marshal event:", err)
		return
	}

	routingKey := fmt.Sprintf("org.%d.%s", ev.OrganizationID, ev.Type)
	err = b.Channel.Publish(
		b.Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		log.Println("⚠️ failed to publish event:", err)
	}
}

// ====================== In-memory bus ======================

// MemoryBus collects events; used by tests and the single-binary dev mode.
type MemoryBus struct {
	mu     sync.Mutex
	Events []Event
}

func (b *MemoryBus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, ev)
}

// Collected returns a copy of the published events.
func (b *MemoryBus) Collected() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.Events))
	copy(out, b.Events)
	return out
}

var _ Bus = (*AMQPBus)(nil)
var _ Bus = (*MemoryBus)(nil)
