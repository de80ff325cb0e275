package model

import "time"

// 操作者が特定できないときの履歴上の表示名。
const UnknownActorName = "system"

// StatusEvent はステータス遷移の履歴エントリ（追記のみ、変更不可）。
// 遷移が確定した直後、履歴の最後のエントリのStatusは必ず注文の現在ステータスと一致する。
type StatusEvent struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64       `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(40);not null" json:"status"`
	ActorName string      `gorm:"type:varchar(255);not null" json:"actor_name"`
	CreatedAt time.Time   `gorm:"not null;index" json:"created_at"`
}
