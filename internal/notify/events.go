package notify

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// EventPublisher pushes domain events to NATS. Everything published through it
// is fire-and-forget; callers log failures and move on.
type EventPublisher struct {
	conn *nats.Conn
}

func ConnectEvents(url string) (*EventPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("auctioncraft-backend"))
	if err != nil {
		return nil, fmt.Errorf("notify: connect to nats: %w", err)
	}
	return &EventPublisher{conn: conn}, nil
}

func (p *EventPublisher) Publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: encode event %s: %w", subject, err)
	}
	return p.conn.Publish(subject, data)
}

func (p *EventPublisher) Close() {
	p.conn.Drain()
}
