package model

import (
	"strconv"
	"strings"
	"time"
)

// 優先度（通常/至急）。
type OrderPriority string

const (
	PriorityNormal OrderPriority = "NORMAL"
	PriorityUrgent OrderPriority = "URGENT"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// Order は注文の中心エンティティ。
// ID がストア側の主キー、OrderNumber は外部由来の注文番号トークン。
// 表示用のDisplayIDはOrderNumberから導出する（永続化しない）。
type Order struct {
	ID              int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string      `gorm:"type:varchar(64);not null;index" json:"order_number"`
	EstablishmentID int64       `gorm:"not null;index" json:"establishment_id"`
	Status          OrderStatus `gorm:"type:varchar(40);not null;index" json:"status"`

	//顧客スナップショット（住所はスキーマ次第で空のことがある）
	CustomerName      string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone     string `gorm:"type:varchar(40)" json:"customer_phone"`
	AddressStreet     string `gorm:"type:varchar(255)" json:"address_street"`
	AddressNumber     string `gorm:"type:varchar(40)" json:"address_number"`
	AddressDistrict   string `gorm:"type:varchar(120)" json:"address_district"`
	AddressComplement string `gorm:"type:varchar(255)" json:"address_complement"`

	//金額はint64のセント単位
	Subtotal    int64 `gorm:"not null" json:"subtotal"`
	DeliveryFee int64 `gorm:"not null" json:"delivery_fee"`
	Discount    int64 `gorm:"not null" json:"discount"`
	Total       int64 `gorm:"not null" json:"total"`

	PaymentMethod string        `gorm:"type:varchar(40)" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"payment_status"`

	CourierName string        `gorm:"type:varchar(120)" json:"courier_name"`
	Note        string        `gorm:"type:text" json:"note"`
	Priority    OrderPriority `gorm:"type:varchar(20);not null;default:'NORMAL'" json:"priority"`
	EtaMinutes  *int          `json:"eta_minutes"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// DisplayID は注文番号の数字部分から導出した表示用ID。
// 店舗をまたいで一意が保証されるのは ID のほうで、こちらは画面表示専用。
func (o Order) DisplayID() int64 {
	return DisplayIDFromOrderNumber(o.OrderNumber)
}

func DisplayIDFromOrderNumber(number string) int64 {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	//桁あふれは末尾を優先（表示用なので厳密さは不要）
	digits := b.String()
	if len(digits) > 18 {
		digits = digits[len(digits)-18:]
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ReconcileTotals は合計金額の不変条件を回復する。
// 明細があれば小計は明細から再計算、なければ total - deliveryFee で復元する。
// ストアの値をそのまま信用しない。
func (o *Order) ReconcileTotals(items []OrderLineItem) {
	if len(items) > 0 {
		var sub int64
		for _, it := range items {
			sub += it.LineTotal()
		}
		o.Subtotal = sub
	} else if o.Subtotal == 0 && o.Total != 0 {
		//割引を足し戻さないと再計算後のtotalが保存値からずれる
		o.Subtotal = o.Total - o.DeliveryFee + o.Discount
	}
	o.Total = o.Subtotal + o.DeliveryFee - o.Discount
}
