package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// Publisher delivers property events.  Implementations must not block a
// request for long; failures are reported, never retried.
type Publisher interface {
    Publish(ctx context.Context, ev PropertyEvent) error
}

// NopPublisher drops every event.  Used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, PropertyEvent) error { return nil }

// AMQPPublisher publishes each event on a short-lived connection to the
// default exchange, routed to PropertyQueueName.  Messages are persistent.
type AMQPPublisher struct {
    url         string
    dialTimeout time.Duration
    log         logrus.FieldLogger
}

func NewAMQPPublisher(url string, log logrus.FieldLogger) *AMQPPublisher {
    return &AMQPPublisher{url: url, dialTimeout: 2 * time.Second, log: log}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev PropertyEvent) error {
    if ev.OccurredAt == "" {
        ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
    }
    l := p.log.WithFields(logrus.Fields{"event": ev.Type, "property_id": ev.PropertyID})

    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.dialTimeout)})
    if err != nil {
        l.WithError(err).Warn("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        l.WithError(err).Warn("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Idempotent; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(PropertyQueueName, true, false, false, false, nil); err != nil {
        l.WithError(err).Warn("rabbitmq: queue declare failed")
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", PropertyQueueName, false, false, pub); err != nil {
        l.WithError(err).Warn("rabbitmq: publish failed")
        return err
    }
    return nil
}
