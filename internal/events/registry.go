package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// graph
	"graph.built":  {},
	"graph.loaded": {},
	"graph.failed": {},

	// fill
	"fill.started":   {},
	"fill.sphere":    {},
	"fill.retry":     {},
	"fill.completed": {},

	// seed
	"seed.generated": {},
	"seed.failed":    {},
	"seed.stored":    {},
	"seed.published": {},
	"seed.verified":  {},

	// broker
	"mqtt.connected":    {},
	"mqtt.disconnected": {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
	"system.alert":    {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
