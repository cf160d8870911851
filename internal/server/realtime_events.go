package server

import (
	"context"
	"encoding/json"
	"log"

	"ripple/internal/models"
	"ripple/internal/observability"
)

// PublishFeedEvent fans a committed feed event out to connected clients.
// With Redis present the event goes through pub/sub only; the local hub
// receives it via its own subscription, which keeps delivery identical on
// every instance and avoids double-delivering to local clients. Without
// Redis the event goes straight to the local hub.
func (s *Server) PublishFeedEvent(event models.FeedEvent) {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s feed event: %v", event.Action, err)
		return
	}
	message := string(eventJSON)

	if s.notifier != nil {
		if err := s.notifier.PublishFeed(context.Background(), message); err != nil {
			log.Printf("failed to publish %s feed event: %v", event.Action, err)
		}
	} else if s.hub != nil {
		s.hub.BroadcastAll(message)
	}

	observability.FeedEventsPublished.WithLabelValues(event.Action).Inc()
}
