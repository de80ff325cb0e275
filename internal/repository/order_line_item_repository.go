package repository

import (
	"context"

	"deliveryboard/internal/domain/model"
)

type OrderLineItemRepository interface {
	//複数注文の明細を1往復でまとめて取る。
	//空のID集合は通信せずに空mapを返す。各注文の明細は作成順（id asc）。
	ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderLineItem, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLineItem, error)
}
