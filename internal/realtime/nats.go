package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATSBridge subscribes to dataset activity subjects and pushes messages into the Hub.
type NATSBridge struct {
	conn *nats.Conn
	hub  *Hub
}

func NewNATSBridge(natsURL string, hub *Hub) (*NATSBridge, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSBridge{conn: nc, hub: hub}, nil
}

// Subscribe listens for activity messages on datapuur.dataset.*.activity
func (b *NATSBridge) Subscribe() error {
	subject := "datapuur.dataset.*.activity"
	_, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		datasetID, err := parseDatasetIDFromSubject(msg.Subject)
		if err != nil {
			log.Printf("nats: bad subject %q: %v", msg.Subject, err)
			return
		}

		// Wrap the raw activity payload in the outgoing envelope
		envelope := outgoingMsg{
			Type:      "dataset.activity",
			DatasetID: datasetID,
			Payload:   json.RawMessage(msg.Data),
		}
		data, err := json.Marshal(envelope)
		if err != nil {
			log.Printf("nats: marshal envelope: %v", err)
			return
		}

		b.hub.broadcast <- broadcastMsg{datasetID: datasetID, payload: data}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %q: %w", subject, err)
	}

	log.Printf("NATS bridge subscribed to: %s", subject)
	return nil
}

// Close drains the NATS connection.
func (b *NATSBridge) Close() {
	if err := b.conn.Drain(); err != nil {
		log.Printf("nats drain: %v", err)
	}
}

// parseDatasetIDFromSubject extracts the dataset id from "datapuur.dataset.<id>.activity"
func parseDatasetIDFromSubject(subject string) (string, error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 4 {
		return "", fmt.Errorf("expected 4 parts, got %d", len(parts))
	}
	if parts[2] == "" {
		return "", fmt.Errorf("empty dataset id")
	}
	return parts[2], nil
}
