package queue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/leadowl/leadowl-backend/internal/service"
)

// TickTopic carries processing triggers for the campaign queue. A tick's
// payload is a service.ProcessOptions.
const TickTopic = "queue_ticks"

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process queue with retry, used when the server
// runs without a broker and in tests.
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
		log.Printf("job failed (attempt %d/%d): %v\n", job.RetryCount, job.MaxRetries, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("job permanently failed after %d attempts\n", job.MaxRetries)
			return // no requeue
		}

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

// StartTickSubscriber runs the queue processor whenever a tick arrives.
func StartTickSubscriber(q Queue, processor *service.QueueProcessor) {
	err := q.Subscribe(TickTopic, func(payload any) error {
		opts, ok := payload.(service.ProcessOptions)
		if !ok {
			log.Println("⚠️ invalid tick payload type, expected ProcessOptions")
			return nil // no retry
		}

		result, err := processor.Process(context.Background(), opts)
		if err != nil {
			log.Println("⚠️ queue processing failed:", err)
			return err // triggers retry in queue
		}

		log.Printf("✅ tick processed: run=%s claimed=%d dry_run=%v\n", result.RunID, result.TotalClaimed, result.DryRun)
		return nil
	})

	if err != nil {
		log.Println("⚠️ failed to subscribe to", TickTopic, ":", err)
	}
}
