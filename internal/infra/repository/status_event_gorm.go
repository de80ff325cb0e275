package repository

import (
	"context"

	"deliveryboard/internal/domain/model"

	"gorm.io/gorm"
)

type StatusEventGormRepository struct {
	db *gorm.DB
}

func NewStatusEventGormRepository(db *gorm.DB) *StatusEventGormRepository {
	return &StatusEventGormRepository{db: db}
}

func (r *StatusEventGormRepository) Create(ctx context.Context, event model.StatusEvent) error {
	return r.db.WithContext(ctx).Create(&event).Error
}

func (r *StatusEventGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.StatusEvent, error) {
	var events []model.StatusEvent
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&events).Error
	if err != nil {
		return []model.StatusEvent{}, err
	}
	return events, nil
}
