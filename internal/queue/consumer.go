package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// ActivityLog appends one human-readable line per property event to a file.
type ActivityLog struct {
    Path string
}

// StartPropertyConsumer connects to RabbitMQ, declares PropertyQueueName
// and appends every delivery to out.  It reconnects with exponential
// backoff and returns only when ctx is cancelled.  Undecodable messages are
// rejected without requeue so the loop keeps moving.
func StartPropertyConsumer(ctx context.Context, url string, out *ActivityLog, log logrus.FieldLogger) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.WithError(err).Warnf("property-consumer: dial failed; retrying in %s", backoff)
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, out, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.WithError(err).Warn("property-consumer: consume loop ended; reconnecting")
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, out *ActivityLog, log logrus.FieldLogger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.WithError(err).Warn("property-consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(PropertyQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(PropertyQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := out.Handle(d.Body); err != nil {
                log.WithError(err).Warn("property-consumer: handle message failed")
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message body and appends it to the log file.
func (a *ActivityLog) Handle(body []byte) error {
    var ev PropertyEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.PropertyID == 0 {
        return errors.New("incomplete event")
    }
    if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(a.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatEvent(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatEvent renders ev as a single log line ending in a newline.
func FormatEvent(ev PropertyEvent) string {
    line := fmt.Sprintf("[%s] %s | property_id=%d | landlord_id=%d", ev.OccurredAt, ev.Type, ev.PropertyID, ev.LandlordID)
    if ev.Title != "" {
        line += fmt.Sprintf(" | title=%q", ev.Title)
    }
    if ev.Status != "" {
        line += " | status=" + ev.Status
    }
    if ev.PhotosAdded > 0 {
        line += fmt.Sprintf(" | photos_added=%d", ev.PhotosAdded)
    }
    return line + "\n"
}
