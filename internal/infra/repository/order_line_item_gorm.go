package repository

import (
	"context"

	"deliveryboard/internal/domain/model"

	"gorm.io/gorm"
)

type OrderLineItemGormRepository struct {
	db *gorm.DB
}

func NewOrderLineItemGormRepository(db *gorm.DB) *OrderLineItemGormRepository {
	return &OrderLineItemGormRepository{db: db}
}

func (r *OrderLineItemGormRepository) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderLineItem, error) {
	//空集合は通信しないで空mapを返す
	if len(orderIDs) == 0 {
		return map[int64][]model.OrderLineItem{}, nil
	}

	var items []model.OrderLineItem
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return map[int64][]model.OrderLineItem{}, err
	}

	out := make(map[int64][]model.OrderLineItem, len(orderIDs))
	for _, it := range items {
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, nil
}

func (r *OrderLineItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLineItem, error) {
	var items []model.OrderLineItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderLineItem{}, err
	}
	return items, nil
}
