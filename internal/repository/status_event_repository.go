package repository

import (
	"context"

	"deliveryboard/internal/domain/model"
)

type StatusEventRepository interface {
	Create(ctx context.Context, event model.StatusEvent) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.StatusEvent, error)
}
