package repository

import (
	"context"
	"errors"
	"time"

	"deliveryboard/internal/domain/model"
	repo "deliveryboard/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	//店舗スコープ絞り込み（nilなら全店舗）
	if f.EstablishmentID != nil {
		q = q.Where("establishment_id = ?", *f.EstablishmentID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var items []model.Order
	if err := q.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

func (r *OrderGormRepository) FindByOrderNumber(ctx context.Context, number string) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("order_number = ?", number).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order, items []model.OrderLineItem) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}

	if len(items) > 0 {
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
			//明細insert失敗時の補償削除（ベストエフォート）。
			//2つのinsertはアトミックではないので、作ったorder行を消してから元のエラーを返す。
			_ = r.db.WithContext(ctx).Where("id = ?", order.ID).Delete(&model.Order{}).Error
			return 0, err
		}
	}

	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) UpdateDetails(ctx context.Context, orderID int64, patch repo.OrderDetailsPatch) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"customer_name":      patch.CustomerName,
			"customer_phone":     patch.CustomerPhone,
			"address_street":     patch.AddressStreet,
			"address_number":     patch.AddressNumber,
			"address_district":   patch.AddressDistrict,
			"address_complement": patch.AddressComplement,
			"courier_name":       patch.CourierName,
			"note":               patch.Note,
			"updated_at":         time.Now(),
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) Delete(ctx context.Context, orderID int64) (int64, error) {
	//フェーズ1：明細を先に消す（件数を数える）
	res := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderLineItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	itemsDeleted := res.RowsAffected

	//フェーズ2：order行本体。0件ならErrNotFound（明細が消えていても）。
	res = r.db.WithContext(ctx).Where("id = ?", orderID).Delete(&model.Order{})
	if res.Error != nil {
		return itemsDeleted, res.Error
	}
	if res.RowsAffected == 0 {
		return itemsDeleted, repo.ErrNotFound
	}

	return itemsDeleted, nil
}
