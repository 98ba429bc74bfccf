package service

import (
	"encoding/json"
	"fmt"
	"time"

	datapuur "github.com/genaimavericks/datapuur-export"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// ActivityPublisher emits dataset activity events over NATS for the realtime
// relay and the activity log. A nil publisher drops events silently, so the
// export path works without a broker configured.
type ActivityPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

type activityEvent struct {
	DatasetID string         `json:"datasetId"`
	Action    string         `json:"action"`
	Detail    map[string]any `json:"detail,omitempty"`
	At        time.Time      `json:"at"`
}

func NewActivityPublisher(natsURL string) (*ActivityPublisher, error) {
	if natsURL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &ActivityPublisher{conn: nc, logger: datapuur.Logger}, nil
}

// Publish sends one activity event on datapuur.dataset.<id>.activity.
// Failures are logged and never block the export path.
func (p *ActivityPublisher) Publish(datasetID, action string, detail map[string]any) {
	if p == nil {
		return
	}

	event := activityEvent{
		DatasetID: datasetID,
		Action:    action,
		Detail:    detail,
		At:        time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to marshal activity event")
		return
	}

	subject := fmt.Sprintf("datapuur.dataset.%s.activity", datasetID)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("Failed to publish activity event")
	}
}

// Close drains the NATS connection.
func (p *ActivityPublisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("NATS drain failed")
	}
}
