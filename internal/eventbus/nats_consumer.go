package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/matthewbaird/chaincodegen/internal/event"
)

// SubjectPrefix is prepended to the event type to form the NATS subject:
// "chaincodegen.chaincode_generated".
const SubjectPrefix = "chaincodegen."

// Conn is the part of *nats.Conn the consumer uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSConsumer forwards every domain event to NATS as JSON.
type NATSConsumer struct {
	conn Conn
}

// NewNATSConsumer connects to the NATS server at url.
func NewNATSConsumer(url string) (*NATSConsumer, error) {
	nc, err := nats.Connect(url, nats.Name("chaincodegen"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSConsumer{conn: nc}, nil
}

// NewNATSConsumerWithConn wraps an existing connection.
func NewNATSConsumerWithConn(conn Conn) *NATSConsumer {
	return &NATSConsumer{conn: conn}
}

func (c *NATSConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	return c.conn.Publish(SubjectPrefix+evt.EventType, data)
}

// Close closes the NATS connection.
func (c *NATSConsumer) Close() error {
	c.conn.Close()
	return nil
}
