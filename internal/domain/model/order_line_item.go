package model

import "time"

// OrderLineItem は注文明細。Orderと一緒に作られ、カスケード削除でのみ消える。
type OrderLineItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64     `gorm:"not null;index" json:"order_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity            int64     `gorm:"not null" json:"quantity"`
	Note                string    `gorm:"type:varchar(255)" json:"note"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (it OrderLineItem) LineTotal() int64 {
	return it.UnitPriceSnapshot * it.Quantity
}
