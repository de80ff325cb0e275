package repository

import (
	"context"
	"errors"

	"deliveryboard/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧取得のフィルタ。EstablishmentIDがnilなら全店舗（管理者のみ）。
type OrderListFilter struct {
	EstablishmentID *int64
	Status          string
}

// 編集保存で一括更新するフィールド。値はtrim済みで渡す。
type OrderDetailsPatch struct {
	CustomerName      string
	CustomerPhone     string
	AddressStreet     string
	AddressNumber     string
	AddressDistrict   string
	AddressComplement string
	CourierName       string
	Note              string
}

type OrderRepository interface {
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	//見つからないのはエラーではなくfound=false
	FindByID(ctx context.Context, orderID int64) (model.Order, bool, error)
	FindByOrderNumber(ctx context.Context, number string) (model.Order, bool, error)

	//orderを作ってから明細を一括insertする。明細側が失敗したら
	//作ったorder行をベストエフォートで消してから元のエラーを返す（非アトミック）。
	Create(ctx context.Context, order model.Order, items []model.OrderLineItem) (int64, error)

	//updated_atも更新する。0行更新はErrNotFound。
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	UpdateDetails(ctx context.Context, orderID int64, patch OrderDetailsPatch) error

	//2段階カスケード削除：先に明細、次にorder行。
	//order行が0件削除ならErrNotFound（明細が消えていても）。
	Delete(ctx context.Context, orderID int64) (itemsDeleted int64, err error)
}
