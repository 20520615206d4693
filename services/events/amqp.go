package eventsvc

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/trezcool/tutorhub/core"
)

const (
	routingPrefix  = "tutorhub."
	publishTimeout = 5 * time.Second
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes audit events as JSON to a durable topic exchange.
// Routing keys look like "tutorhub.tutor.archived".
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
	logger   core.Logger

	mu sync.Mutex // guards ch
	ch amqpChannel
	wg sync.WaitGroup
}

var _ core.EventPublisher = (*AMQPPublisher)(nil)

func NewAMQPPublisher(conf *core.Config, logger core.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(conf.AMQP.URL)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to amqp")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "opening amqp channel")
	}
	err = ch.ExchangeDeclare(
		conf.AMQP.Exchange, // name
		"topic",            // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "declaring amqp exchange")
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: conf.AMQP.Exchange, logger: logger}, nil
}

func newAMQPPublisherWithChannel(ch amqpChannel, exchange string, logger core.Logger) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange, logger: logger}
}

func (p *AMQPPublisher) Publish(_ context.Context, events ...core.Event) {
	for _, evt := range events {
		evt := evt
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := p.publish(evt); err != nil {
				p.logger.Error("publishing event "+evt.RoutingKey(), err, map[string]interface{}{"event_id": evt.ID})
			}
		}()
	}
}

func (p *AMQPPublisher) publish(evt core.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}

	// the request context may be gone by now
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx,
		p.exchange,                     // exchange
		routingPrefix+evt.RoutingKey(), // routing key
		false,                          // mandatory
		false,                          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    evt.ID,
			Timestamp:    evt.Timestamp,
			Body:         body,
		},
	)
	return errors.Wrap(err, "publishing to amqp")
}

// Close waits for in-flight events then closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		return errors.Wrap(err, "closing amqp channel")
	}
	if p.conn != nil {
		return errors.Wrap(p.conn.Close(), "closing amqp connection")
	}
	return nil
}
