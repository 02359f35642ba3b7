package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/storage"
)

// Conn is the part of Client the publisher needs.
type Conn interface {
	Publish(topic string, payload []byte, retained bool) error
}

// Publisher writes seed summaries and sphere traces under a topic prefix:
//
//	<prefix>/seeds/<hash>          retained summary
//	<prefix>/seeds/<hash>/spheres  sphere trace
//	<prefix>/seeds/latest          hash of the newest seed, retained
type Publisher struct {
	conn   Conn
	prefix string
}

func NewPublisher(conn Conn, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: strings.TrimSuffix(prefix, "/")}
}

// SeedTopic returns the summary topic for hash.
func (p *Publisher) SeedTopic(hash string) string {
	return p.prefix + "/seeds/" + hash
}

// PublishSeed publishes rec. It is a passive feed: failures are returned to
// the caller, who logs them and carries on.
func (p *Publisher) PublishSeed(rec *storage.SeedRecord) error {
	summary, err := json.Marshal(rec.Summary())
	if err != nil {
		return fmt.Errorf("failed to marshal seed summary: %w", err)
	}
	spheres, err := json.Marshal(rec.Payload.Spheres)
	if err != nil {
		return fmt.Errorf("failed to marshal spheres: %w", err)
	}

	topic := p.SeedTopic(rec.Hash)
	if err := p.conn.Publish(topic, summary, true); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	if err := p.conn.Publish(topic+"/spheres", spheres, false); err != nil {
		return fmt.Errorf("publish %s/spheres: %w", topic, err)
	}
	if err := p.conn.Publish(p.prefix+"/seeds/latest", []byte(rec.Hash), true); err != nil {
		return fmt.Errorf("publish latest: %w", err)
	}

	events.Emit(events.LevelInfo, "seed.published", "", map[string]interface{}{
		"hash":  rec.Hash,
		"topic": topic,
	})
	return nil
}
