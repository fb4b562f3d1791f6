package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"frustration-engine/pkg/classifier"
	"frustration-engine/pkg/errors"
	"frustration-engine/pkg/metrics"
)

// ClassificationEvent is the message published per classification so
// downstream consumers (dashboards, persistence, escalation workflows) can
// react without coupling to the engine.
type ClassificationEvent struct {
	EventID      string            `json:"event_id"`
	SessionID    string            `json:"session_id"`
	Timestamp    time.Time         `json:"timestamp"`
	Result       classifier.Result `json:"result"`
	SourceEngine string            `json:"source_engine"`
}

// AMQPConfig holds publisher configuration.
type AMQPConfig struct {
	URL        string
	QueueName  string
	RoutingKey string
	Durable    bool
}

// Publisher publishes classification events to an AMQP queue. Publishing is
// best effort: a broker outage degrades to logged drops, it never blocks or
// fails a classification.
type Publisher struct {
	logger    *logrus.Entry
	config    AMQPConfig
	conn      *amqp.Connection
	channel   *amqp.Channel
	connected bool
	connMutex sync.Mutex
}

// NewPublisher creates an AMQP publisher. Connect must be called before use.
func NewPublisher(logger *logrus.Logger, config AMQPConfig) *Publisher {
	if config.RoutingKey == "" {
		config.RoutingKey = config.QueueName
	}
	return &Publisher{
		logger: logger.WithField("component", "amqp_publisher"),
		config: config,
	}
}

// Connect establishes the connection and declares the queue.
func (p *Publisher) Connect() error {
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if p.connected {
		return nil
	}
	if p.config.URL == "" || p.config.QueueName == "" {
		return errors.New("AMQP URL or queue name not configured")
	}

	conn, err := amqp.Dial(p.config.URL)
	if err != nil {
		metrics.RecordAMQPConnectionError()
		return errors.Wrap(err, "failed to connect to AMQP server")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		metrics.RecordAMQPConnectionError()
		return errors.Wrap(err, "failed to open AMQP channel")
	}

	_, err = channel.QueueDeclare(
		p.config.QueueName,
		p.config.Durable,
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		metrics.RecordAMQPConnectionError()
		return errors.Wrap(err, "failed to declare AMQP queue",
			map[string]interface{}{"queue": p.config.QueueName})
	}

	p.conn = conn
	p.channel = channel
	p.connected = true

	p.logger.WithField("queue", p.config.QueueName).Info("AMQP publisher connected")
	return nil
}

// PublishClassification emits one classification event.
func (p *Publisher) PublishClassification(sessionID string, result classifier.Result) error {
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if !p.connected {
		metrics.RecordAMQPPublish(false)
		return errors.New("publisher not connected")
	}

	event := ClassificationEvent{
		EventID:      uuid.New().String(),
		SessionID:    sessionID,
		Timestamp:    time.Now(),
		Result:       result,
		SourceEngine: "frustration-engine",
	}

	body, err := json.Marshal(event)
	if err != nil {
		metrics.RecordAMQPPublish(false)
		return errors.Wrap(err, "failed to marshal classification event")
	}

	err = p.channel.Publish(
		"", // default exchange
		p.config.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   event.Timestamp,
			MessageId:   event.EventID,
			Body:        body,
		},
	)
	if err != nil {
		metrics.RecordAMQPPublish(false)
		return errors.Wrap(err, "failed to publish classification event")
	}

	metrics.RecordAMQPPublish(true)
	return nil
}

// IsConnected reports whether the publisher has a live connection.
func (p *Publisher) IsConnected() bool {
	p.connMutex.Lock()
	defer p.connMutex.Unlock()
	return p.connected
}

// Close tears down the channel and connection.
func (p *Publisher) Close() {
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	p.connected = false
	p.logger.Debug("AMQP publisher closed")
}
