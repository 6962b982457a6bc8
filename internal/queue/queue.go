package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/unclebandit/zapleopard-backend/internal/service"
)

// Topic names
const (
	TopicCampaignRuns   = "campaign_runs"
	TopicInboundReplies = "inbound_replies"
)

// RunJob asks a worker to execute one campaign.
type RunJob struct {
	CampaignID int `json:"campaign_id"`
}

// InboundReply carries one inbound message toward the reconciler.
type InboundReply struct {
	CampaignID  int    `json:"campaign_id"`
	RecipientID int    `json:"recipient_id"`
	ReplyText   string `json:"reply_text"`
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// ====================== In-memory queue ======================

// InMemoryQueue is the single-binary dev queue with retry
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// ====================== AMQP queue ======================

// AMQPQueue adapts a RabbitMQ channel to the Queue interface. Payloads cross
// the wire as JSON; subscriber handlers receive the raw body.
type AMQPQueue struct {
	Channel *amqp.Channel
}

func NewAMQPQueue(ch *amqp.Channel) *AMQPQueue {
	return &AMQPQueue{Channel: ch}
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
	return q.Channel.QueueDeclare(
		topic, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	declared, err := q.declare(topic)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return q.Channel.Publish(
		"",
		declared.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	declared, err := q.declare(topic)
	if err != nil {
		return err
	}

	msgs, err := q.Channel.Consume(
		declared.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				log.Println("⚠️ handler failed for topic", topic, ":", err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}()
	return nil
}

// ====================== Subscribers ======================

// StartCampaignRunSubscriber hooks the orchestration engine onto the run
// topic. Payloads arrive typed from the in-memory queue and as raw JSON
// from AMQP.
func StartCampaignRunSubscriber(q Queue, engine *service.CampaignEngine) {
	err := q.Subscribe(TopicCampaignRuns, func(payload any) error {
		var job RunJob
		switch v := payload.(type) {
		case RunJob:
			job = v
		case []byte:
			if err := json.Unmarshal(v, &job); err != nil {
				log.Println("⚠️ invalid run job payload:", err)
				return nil // no retry
			}
		default:
			log.Printf("⚠️ unexpected run job payload type %T\n", payload)
			return nil // no retry
		}

		log.Println("📩 processing run job for campaign", job.CampaignID)
		return engine.Run(context.Background(), job.CampaignID)
	})
	if err != nil {
		log.Println("⚠️ failed to start subscriber for", TopicCampaignRuns, ":", err)
	}
}

// StartInboundReplySubscriber hooks the reconciler onto the reply topic.
func StartInboundReplySubscriber(q Queue, reconciler *service.ResponseReconciler) {
	err := q.Subscribe(TopicInboundReplies, func(payload any) error {
		var reply InboundReply
		switch v := payload.(type) {
		case InboundReply:
			reply = v
		case []byte:
			if err := json.Unmarshal(v, &reply); err != nil {
				log.Println("⚠️ invalid inbound reply payload:", err)
				return nil // no retry
			}
		default:
			log.Printf("⚠️ unexpected inbound reply payload type %T\n", payload)
			return nil // no retry
		}

		log.Println("📩 reconciling reply for recipient", reply.RecipientID)
		return reconciler.Reconcile(reply.CampaignID, reply.RecipientID, reply.ReplyText)
	})
	if err != nil {
		log.Println("⚠️ failed to start subscriber for", TopicInboundReplies, ":", err)
	}
}

var _ Queue = (*InMemoryQueue)(nil)
var _ Queue = (*AMQPQueue)(nil)
