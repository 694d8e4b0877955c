package services

import (
	"context"
	"log/slog"
)

// Routing keys of the domain events published by the services.
const (
	EventUserRegistered = "user.registered"
	EventBlogCreated    = "blog.created"
	EventBlogLiked      = "blog.liked"
	EventBlogDeleted    = "blog.deleted"
)

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload map[string]interface{}) error
}

// publishEvent publishes best-effort: failures are logged and never bubble up
// to the caller, whose write has already been committed.
func publishEvent(ctx context.Context, pub EventPublisher, logger *slog.Logger, routingKey string, payload map[string]interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, payload); err != nil {
		logger.Warn("failed to publish domain event",
			"event", "publish_event_failed",
			"routing_key", routingKey,
			"error", err.Error(),
		)
		return
	}
	logger.Debug("published domain event", "routing_key", routingKey)
}
