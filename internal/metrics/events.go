package metrics

import (
	"context"

	"github.com/geoclaim/geoclaim/internal/event"
	"github.com/geoclaim/geoclaim/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.VisitLogged,
		event.PlayerLevelUp,
		event.PlayerRegistered,
		event.LootSpawned,
		event.LootCollected,
		event.LootExpired,
		event.BuffGranted,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	// Always increment event counter
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.VisitLogged:
		payload, err := event.DecodePayload[event.VisitLoggedPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		kind := "manual"
		if payload.Auto {
			kind = "auto"
		}
		VisitsAccepted.WithLabelValues(kind).Inc()
		XPGranted.Add(float64(payload.XPGained))
		ClaimPointsGranted.Add(float64(payload.ClaimPoints))

	case event.PlayerLevelUp:
		LevelUps.Inc()

	case event.PlayerRegistered:
		PlayersRegistered.Inc()

	case event.LootSpawned:
		LootSpawned.Inc()

	case event.LootCollected:
		payload, err := event.DecodePayload[event.LootCollectedPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		LootCollected.Inc()
		XPGranted.Add(float64(payload.XP))

	case event.LootExpired:
		payload, err := event.DecodePayload[event.LootExpiredPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		LootExpired.Add(float64(payload.SpotsRemoved))

	case event.BuffGranted:
		BuffsGranted.Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
