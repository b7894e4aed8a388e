package event

import (
	"context"
	"log/slog"
)

const (
	TopicProductCreated = "product.created"
	TopicProductUpdated = "product.updated"
	TopicProductDeleted = "product.deleted"
)

// ProductEvent is the payload published for every product lifecycle topic.
type ProductEvent struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Category  string  `json:"category"`
}

func (s *Service) handleProductEvent(ctx context.Context, topic string, ev ProductEvent) error {
	s.logger.InfoContext(ctx, "handling product event",
		slog.String("topic", topic),
		slog.Any("event", ev))
	return nil
}
