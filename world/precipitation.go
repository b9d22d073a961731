package world

import (
	"github.com/lixenwraith/sndfx/events"
)

// PrecipitationQuery asks listeners for the current precipitation strength
// A handler that supplies its own model sets Strength and cancels the query
type PrecipitationQuery struct {
	events.Base
	World    World
	Strength float32
}

// PrecipitationBus carries precipitation queries
type PrecipitationBus = events.Bus[*PrecipitationQuery]

// NewPrecipitationBus returns a bus with the world-reported default installed
func NewPrecipitationBus() *PrecipitationBus {
	bus := events.NewBus[*PrecipitationQuery]()
	RegisterDefaultPrecipitation(bus)
	return bus
}

// RegisterDefaultPrecipitation installs the lowest-priority handler that reads the world's own
// rain strength; it never sees queries already answered by someone else
func RegisterDefaultPrecipitation(bus *PrecipitationBus) (unsubscribe func()) {
	return bus.Subscribe(events.Lowest, false, func(q *PrecipitationQuery) {
		if q.World != nil {
			q.Strength = q.World.RainStrength()
		}
		q.Cancel()
	})
}
