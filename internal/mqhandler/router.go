package mqhandler

import (
	"context"

	"go.uber.org/zap"

	"worklog/pkg/mq"
)

// Router dispatches deliveries by routing key.
type Router struct {
	routes map[string]mq.MessageHandler
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		routes: make(map[string]mq.MessageHandler),
		logger: logger,
	}
}

func (r *Router) Register(routingKey string, h mq.MessageHandler) {
	r.routes[routingKey] = h
}

// RoutingKeys lists the registered keys, used as queue bindings.
func (r *Router) RoutingKeys() []string {
	keys := make([]string, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	return keys
}

// Handle acks unknown routing keys by returning nil.
func (r *Router) Handle(ctx context.Context, d mq.Delivery) error {
	h, ok := r.routes[d.RoutingKey]
	if !ok {
		r.logger.Warn("No handler for routing key",
			zap.String("routing_key", d.RoutingKey),
			zap.String("message_id", d.MessageID),
		)
		return nil
	}
	return h(ctx, d)
}
