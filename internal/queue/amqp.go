package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// TickPublisher publishes processing ticks to RabbitMQ for cmd/worker to
// consume.
type TickPublisher struct {
	Channel *amqp.Channel
}

func NewTickPublisher(ch *amqp.Channel) (*TickPublisher, error) {
	if _, err := DeclareTickQueue(ch); err != nil {
		return nil, err
	}
	return &TickPublisher{Channel: ch}, nil
}

// DeclareTickQueue declares the durable tick queue; publisher and consumer
// both call it so either side can start first.
func DeclareTickQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		TickTopic, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
}

// Publish marshals the payload and hands it to RabbitMQ. The topic is the
// queue name.
func (p *TickPublisher) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Channel.Publish(
		"",    // exchange
		topic, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    uuid.New().String(),
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Subscribe is not supported on the publisher side; consumption happens in
// cmd/worker.
func (p *TickPublisher) Subscribe(topic string, handler func(payload any) error) error {
	return fmt.Errorf("amqp tick publisher cannot subscribe, run the worker instead")
}

var _ Queue = (*TickPublisher)(nil)
