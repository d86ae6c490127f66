package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartRSVPConsumer connects to RabbitMQ, declares the rsvp.confirmed
// and rsvp.cancelled queues (durable), and consumes both. Each message
// is appended to logs/rsvp.log in a single-line, human-friendly format.
// The function runs a reconnect loop with exponential backoff and keeps
// running across broker restarts; processing errors are logged and the
// offending message rejected without requeue so the loop never spins.
func StartRSVPConsumer() error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(brokerURL())
        if err != nil {
            log.Printf("rsvp-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn); err != nil {
            log.Printf("rsvp-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
            continue
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("rsvp-consumer: set QoS failed: %v", err)
    }

    for _, name := range []string{confirmedQueueName, cancelledQueueName} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
    }

    confirmed, err := ch.Consume(confirmedQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", confirmedQueueName, err)
    }
    cancelled, err := ch.Consume(cancelledQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", cancelledQueueName, err)
    }

    for {
        select {
        case d, ok := <-confirmed:
            if !ok {
                return errors.New("confirmed deliveries channel closed")
            }
            handleDelivery(d, handleConfirmed)
        case d, ok := <-cancelled:
            if !ok {
                return errors.New("cancelled deliveries channel closed")
            }
            handleDelivery(d, handleCancelled)
        }
    }
}

func handleDelivery(d amqp.Delivery, handle func([]byte) (string, error)) {
    line, err := handle(d.Body)
    if err != nil {
        log.Printf("rsvp-consumer: handle message failed: %v", err)
        _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
        return
    }
    if err := appendLogLine(line); err != nil {
        log.Printf("rsvp-consumer: write log failed: %v", err)
        _ = d.Nack(false, false)
        return
    }
    _ = d.Ack(false)
}

func handleConfirmed(body []byte) (string, error) {
    var ev RSVPConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return "", fmt.Errorf("unmarshal: %w", err)
    }
    names := make([]string, 0, len(ev.Attendees))
    for _, a := range ev.Attendees {
        names = append(names, fmt.Sprintf("%s (%s)", a.AttendeeID, a.AttendeeType))
    }
    capStr := "none"
    if ev.AttendanceCap != nil {
        capStr = fmt.Sprintf("%d", *ev.AttendanceCap)
    }
    return fmt.Sprintf("[%s] RSVP confirmed | event=%s | guardian=%s | attendees=[%s] | attendance=%d | cap=%s\n",
        ev.ConfirmedAt, ev.EventID, ev.GuardianEmail, strings.Join(names, ", "), ev.CurrentAttendance, capStr), nil
}

func handleCancelled(body []byte) (string, error) {
    var ev RSVPCancelledEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return "", fmt.Errorf("unmarshal: %w", err)
    }
    hours := "unknown"
    if ev.HoursBeforeEvent != nil {
        hours = fmt.Sprintf("%.1f", *ev.HoursBeforeEvent)
    }
    return fmt.Sprintf("[%s] RSVP cancelled | event=%s | guardian=%s | attendee=%s (%s) | hours_before_event=%s\n",
        ev.CancelledAt, ev.EventID, ev.GuardianEmail, ev.AttendeeID, ev.AttendeeType, hours), nil
}

func appendLogLine(line string) error {
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "rsvp.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
