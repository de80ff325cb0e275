package model

// 注文ステータス（内部語彙）。
type OrderStatus string

const (
	StatusRequested                OrderStatus = "REQUESTED"
	StatusAwaitingPayment          OrderStatus = "AWAITING_PAYMENT"
	StatusPaymentConfirmed         OrderStatus = "PAYMENT_CONFIRMED"
	StatusInPreparation            OrderStatus = "IN_PREPARATION"
	StatusReadyForPickup           OrderStatus = "READY_FOR_PICKUP"
	StatusOutForDelivery           OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered                OrderStatus = "DELIVERED"
	StatusCancelledByEstablishment OrderStatus = "CANCELLED_BY_ESTABLISHMENT"
	StatusCancelledByCustomer      OrderStatus = "CANCELLED_BY_CUSTOMER"
)

// StoreStatus はリモートストア側の語彙。
// 今は内部語彙と同じ文字列だが、別enumとして持つ（将来分岐できるように）。
type StoreStatus string

const (
	StoreRequested                StoreStatus = "REQUESTED"
	StoreAwaitingPayment          StoreStatus = "AWAITING_PAYMENT"
	StorePaymentConfirmed         StoreStatus = "PAYMENT_CONFIRMED"
	StoreInPreparation            StoreStatus = "IN_PREPARATION"
	StoreReadyForPickup           StoreStatus = "READY_FOR_PICKUP"
	StoreOutForDelivery           StoreStatus = "OUT_FOR_DELIVERY"
	StoreDelivered                StoreStatus = "DELIVERED"
	StoreCancelledByEstablishment StoreStatus = "CANCELLED_BY_ESTABLISHMENT"
	StoreCancelledByCustomer      StoreStatus = "CANCELLED_BY_CUSTOMER"
)

var toStore = map[OrderStatus]StoreStatus{
	StatusRequested:                StoreRequested,
	StatusAwaitingPayment:          StoreAwaitingPayment,
	StatusPaymentConfirmed:         StorePaymentConfirmed,
	StatusInPreparation:            StoreInPreparation,
	StatusReadyForPickup:           StoreReadyForPickup,
	StatusOutForDelivery:           StoreOutForDelivery,
	StatusDelivered:                StoreDelivered,
	StatusCancelledByEstablishment: StoreCancelledByEstablishment,
	StatusCancelledByCustomer:      StoreCancelledByCustomer,
}

var fromStore = map[StoreStatus]OrderStatus{
	StoreRequested:                StatusRequested,
	StoreAwaitingPayment:          StatusAwaitingPayment,
	StorePaymentConfirmed:         StatusPaymentConfirmed,
	StoreInPreparation:            StatusInPreparation,
	StoreReadyForPickup:           StatusReadyForPickup,
	StoreOutForDelivery:           StatusOutForDelivery,
	StoreDelivered:                StatusDelivered,
	StoreCancelledByEstablishment: StatusCancelledByEstablishment,
	StoreCancelledByCustomer:      StatusCancelledByCustomer,
}

// ToStoreStatus は内部語彙→ストア語彙の変換。
func ToStoreStatus(s OrderStatus) (StoreStatus, bool) {
	v, ok := toStore[s]
	return v, ok
}

// FromStoreStatus はストア語彙→内部語彙の変換。
// 未知の値はfalseを返す（呼び出し側でハンドリング）。
func FromStoreStatus(s StoreStatus) (OrderStatus, bool) {
	v, ok := fromStore[s]
	return v, ok
}

// StatusMeta は画面表示用メタデータ（ラベルと色トークン）。
type StatusMeta struct {
	Label string
	Color string
}

var statusMeta = map[OrderStatus]StatusMeta{
	StatusRequested:                {Label: "Requested", Color: "gray"},
	StatusAwaitingPayment:          {Label: "Awaiting payment", Color: "amber"},
	StatusPaymentConfirmed:         {Label: "Payment confirmed", Color: "teal"},
	StatusInPreparation:            {Label: "In preparation", Color: "blue"},
	StatusReadyForPickup:           {Label: "Ready for pickup", Color: "indigo"},
	StatusOutForDelivery:           {Label: "Out for delivery", Color: "purple"},
	StatusDelivered:                {Label: "Delivered", Color: "green"},
	StatusCancelledByEstablishment: {Label: "Cancelled (establishment)", Color: "red"},
	StatusCancelledByCustomer:      {Label: "Cancelled (customer)", Color: "red"},
}

// MetaFor はステータスの表示メタデータを返す。
func MetaFor(s OrderStatus) StatusMeta {
	return statusMeta[s]
}

// AllStatuses はボードのカラム順（進行順＋キャンセル2つ）。
func AllStatuses() []OrderStatus {
	return []OrderStatus{
		StatusRequested,
		StatusAwaitingPayment,
		StatusPaymentConfirmed,
		StatusInPreparation,
		StatusReadyForPickup,
		StatusOutForDelivery,
		StatusDelivered,
		StatusCancelledByEstablishment,
		StatusCancelledByCustomer,
	}
}

func (s OrderStatus) IsValid() bool {
	_, ok := toStore[s]
	return ok
}

// IsTerminal はキャンセル2種のみtrue。
// 遷移の前提状態チェックは行わない（任意の状態から任意の状態へ遷移できる仕様）。
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCancelledByEstablishment || s == StatusCancelledByCustomer
}
