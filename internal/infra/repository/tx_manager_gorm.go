package repository

import (
	"context"

	repo "deliveryboard/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders       repo.OrderRepository
	lineItems    repo.OrderLineItemRepository
	statusEvents repo.StatusEventRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository                 { return r.orders }
func (r *txReposGorm) OrderLineItems() repo.OrderLineItemRepository { return r.lineItems }
func (r *txReposGorm) StatusEvents() repo.StatusEventRepository     { return r.statusEvents }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:       NewOrderGormRepository(tx),
			lineItems:    NewOrderLineItemGormRepository(tx),
			statusEvents: NewStatusEventGormRepository(tx),
		}
		return fn(r)
	})
}
