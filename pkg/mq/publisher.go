package mq

import (
	"context"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"worklog/pkg/circuitbreaker"
	"worklog/pkg/otel"
	"worklog/pkg/trace"
)

// Message is one event ready for the broker. Body is already JSON encoded.
type Message struct {
	RoutingKey string
	MessageID  string
	Body       []byte
}

type Publisher struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	breaker *circuitbreaker.Breaker
	logger  *zap.Logger
}

func NewPublisher(url string, logger *zap.Logger) (*Publisher, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := DeclareExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:    conn,
		channel: ch,
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig("mq-publisher"), logger),
		logger:  logger,
	}, nil
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// IsConnected checks if the publisher connection is still alive
func (p *Publisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.channel == nil {
		return false
	}
	return !p.conn.IsClosed() && !p.channel.IsClosed()
}

// Publish sends a message to the exchange. Trace context and trace id travel in the headers.
// amqp091 channels are not safe for concurrent publishing, so calls are serialized.
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	ctx, span := otel.MQPublishSpan(ctx, msg.RoutingKey, ExchangeName)
	defer span.End()

	headers := amqp091.Table{}
	otel.InjectMQHeaders(ctx, headers)
	if traceID := trace.FromContext(ctx); traceID != "" {
		headers["trace_id"] = traceID
	}

	err := p.breaker.Execute(func() error {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.channel.PublishWithContext(
			ctx,
			ExchangeName,
			msg.RoutingKey,
			false,
			false,
			amqp091.Publishing{
				ContentType:  "application/json",
				MessageId:    msg.MessageID,
				Body:         msg.Body,
				DeliveryMode: amqp091.Persistent,
				Headers:      headers,
			},
		)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
