package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"deliveryboard/internal/domain/model"
	repo "deliveryboard/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// ステータス確定後の外部通知。呼び出しは絶対にブロックしない。
type StatusNotifier interface {
	Dispatch(establishmentID int64, status model.OrderStatus, orderNumber string)
}

// ボード上の1注文（明細と履歴込みのメモリ上の集約）。
type BoardOrder struct {
	Order   model.Order           `json:"order"`
	Items   []model.OrderLineItem `json:"items"`
	History []model.StatusEvent   `json:"history"`
}

// ボードの1カラム。9ステータスぶん常に全部返す（空でも）。
type BoardColumn struct {
	ID     string            `json:"id"`
	Label  string            `json:"label"`
	Status model.OrderStatus `json:"status"`
	Color  string            `json:"color"`
	Orders []BoardOrder      `json:"orders"`
}

// BoardUsecase はメモリ上の注文リストを唯一の持ち主として抱える。
// グローバル変数にはせず、ビュー側はSubscribeで変更通知を受ける。
// リストへの反映はリポジトリの確定後にだけ行う（楽観的な先行反映はしない）。
type BoardUsecase struct {
	mu     sync.Mutex
	orders []*BoardOrder

	tx        repo.TransactionManager
	orderRepo repo.OrderRepository
	itemRepo  repo.OrderLineItemRepository
	eventRepo repo.StatusEventRepository
	notifier  StatusNotifier

	listenerMu sync.Mutex
	listeners  []func()
}

func NewBoardUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	itemRepo repo.OrderLineItemRepository,
	eventRepo repo.StatusEventRepository,
	notifier StatusNotifier,
) *BoardUsecase {
	return &BoardUsecase{
		tx:        tx,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		eventRepo: eventRepo,
		notifier:  notifier,
	}
}

// Subscribe は変更通知の購読。コミット済みの変更のたびにfnが呼ばれる。
func (u *BoardUsecase) Subscribe(fn func()) {
	u.listenerMu.Lock()
	defer u.listenerMu.Unlock()
	u.listeners = append(u.listeners, fn)
}

func (u *BoardUsecase) emitChanged() {
	u.listenerMu.Lock()
	fns := make([]func(), len(u.listeners))
	copy(fns, u.listeners)
	u.listenerMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Load は操作者から見える注文をストアから読み直す。
// 管理者は全店舗、それ以外は自店舗のみ。スコープのない非管理者は
// エラーにせず空リストにする（画面を壊さない。リポジトリは呼ばない）。
func (u *BoardUsecase) Load(ctx context.Context, actor model.Actor) error {
	f := repo.OrderListFilter{}
	if !actor.IsAdmin() {
		if actor.EstablishmentID == nil {
			u.mu.Lock()
			u.orders = nil
			u.mu.Unlock()
			u.emitChanged()
			return nil
		}
		f.EstablishmentID = actor.EstablishmentID
	}

	orders, err := u.orderRepo.List(ctx, f)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	//明細は1往復でまとめて取る
	itemsByOrder, err := u.itemRepo.ListByOrderIDs(ctx, ids)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	loaded := make([]*BoardOrder, 0, len(orders))
	for _, o := range orders {
		items := itemsByOrder[o.ID]

		//金額はストアの値を信用せず取り込み時に再計算
		o.ReconcileTotals(items)

		history, err := u.eventRepo.ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		loaded = append(loaded, &BoardOrder{Order: o, Items: items, History: history})
	}

	u.mu.Lock()
	u.orders = loaded
	u.mu.Unlock()
	u.emitChanged()
	return nil
}

// Orders はメモリ上のリストのスナップショットを返す。
func (u *BoardUsecase) Orders() []BoardOrder {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]BoardOrder, 0, len(u.orders))
	for _, bo := range u.orders {
		out = append(out, *bo)
	}
	return out
}

// OrdersFor は操作者のスコープに入る注文だけのスナップショットを返す。
// リストは全リクエスト共有なので、直前に別スコープのLoadが走っていても
// 他店舗の注文がレスポンスへ漏れない。
func (u *BoardUsecase) OrdersFor(actor model.Actor) []BoardOrder {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]BoardOrder, 0, len(u.orders))
	for _, bo := range u.orders {
		if !actor.CanAccess(bo.Order.EstablishmentID) {
			continue
		}
		out = append(out, *bo)
	}
	return out
}

// Columns は注文を9カラムに振り分ける。カラム数は常に9（空でも減らない）。
// searchは顧客名か表示IDに対する大文字小文字無視の部分一致、statusFilterは任意。
// リストに何が載っていてもスコープ外の注文は返さない。
func (u *BoardUsecase) Columns(actor model.Actor, search string, statusFilter string) []BoardColumn {
	u.mu.Lock()
	defer u.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(search))

	byStatus := make(map[model.OrderStatus][]BoardOrder)
	for _, bo := range u.orders {
		if !actor.CanAccess(bo.Order.EstablishmentID) {
			continue
		}
		if statusFilter != "" && string(bo.Order.Status) != statusFilter {
			continue
		}
		if q != "" && !matchesSearch(bo.Order, q) {
			continue
		}
		byStatus[bo.Order.Status] = append(byStatus[bo.Order.Status], *bo)
	}

	cols := make([]BoardColumn, 0, len(model.AllStatuses()))
	for _, s := range model.AllStatuses() {
		m := model.MetaFor(s)
		members := byStatus[s]
		if members == nil {
			members = []BoardOrder{}
		}
		cols = append(cols, BoardColumn{
			ID:     string(s),
			Label:  m.Label,
			Status: s,
			Color:  m.Color,
			Orders: members,
		})
	}
	return cols
}

func matchesSearch(o model.Order, q string) bool {
	if strings.Contains(strings.ToLower(o.CustomerName), q) {
		return true
	}
	return strings.Contains(strconv.FormatInt(o.DisplayID(), 10), q)
}

// MoveOrder はドラッグ＆ドロップの遷移コミット。
// 現在と同じステータスへのドロップは通信前に弾く（no-op、履歴も増やさない）。
// それ以外の遷移は前提状態を検証せず受け付ける。
// メモリへの反映はリポジトリが成功を返した後だけ。失敗時はボードは見た目ごと元のまま。
func (u *BoardUsecase) MoveOrder(ctx context.Context, actor model.Actor, orderID int64, target model.OrderStatus) error {
	if !target.IsValid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	u.mu.Lock()
	bo := u.findLocked(orderID)
	if bo == nil {
		u.mu.Unlock()
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	current := bo.Order.Status
	establishmentID := bo.Order.EstablishmentID
	orderNumber := bo.Order.OrderNumber
	u.mu.Unlock()

	//スコープ外の注文は存在しないものとして扱う（更新は主キー指定なのでここで止める）
	if !actor.CanAccess(establishmentID) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if target == current {
		return NewHTTPError(http.StatusBadRequest, "status unchanged")
	}

	event := model.StatusEvent{
		OrderID:   orderID,
		Status:    target,
		ActorName: actor.HistoryName(),
		CreatedAt: time.Now(),
	}

	//ステータス更新と履歴追記は同じTxで
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().UpdateStatus(ctx, orderID, target); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.StatusEvents().Create(ctx, event); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		//ローカルは触らない
		return err
	}

	u.applyStatus(orderID, event)
	u.emitChanged()

	//通知は完全に切り離す（待たない）。注文の遷移はもう確定している。
	u.notifier.Dispatch(establishmentID, target, orderNumber)
	return nil
}

func (u *BoardUsecase) applyStatus(orderID int64, event model.StatusEvent) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if bo := u.findLocked(orderID); bo != nil {
		bo.Order.Status = event.Status
		bo.Order.UpdatedAt = event.CreatedAt
		bo.History = append(bo.History, event)
	}
}

// ApplyStatus は詳細画面の遷移結果をボードへ反映する（確定後にのみ呼ぶ）。
func (u *BoardUsecase) ApplyStatus(orderID int64, event model.StatusEvent) {
	u.applyStatus(orderID, event)
	u.emitChanged()
}

// ApplyDetails は編集保存の結果をボードへ反映する（確定後にのみ呼ぶ）。
func (u *BoardUsecase) ApplyDetails(orderID int64, patch repo.OrderDetailsPatch) {
	u.mu.Lock()
	if bo := u.findLocked(orderID); bo != nil {
		bo.Order.CustomerName = patch.CustomerName
		bo.Order.CustomerPhone = patch.CustomerPhone
		bo.Order.AddressStreet = patch.AddressStreet
		bo.Order.AddressNumber = patch.AddressNumber
		bo.Order.AddressDistrict = patch.AddressDistrict
		bo.Order.AddressComplement = patch.AddressComplement
		bo.Order.CourierName = patch.CourierName
		bo.Order.Note = patch.Note
	}
	u.mu.Unlock()
	u.emitChanged()
}

// Remove は削除確定後にボードからエントリを外す。
func (u *BoardUsecase) Remove(orderID int64) {
	u.mu.Lock()
	kept := u.orders[:0]
	for _, bo := range u.orders {
		if bo.Order.ID != orderID {
			kept = append(kept, bo)
		}
	}
	u.orders = kept
	u.mu.Unlock()
	u.emitChanged()
}

// Add はボードに新しい注文を足す（作成確定後にのみ呼ぶ）。
func (u *BoardUsecase) Add(bo BoardOrder) {
	u.mu.Lock()
	u.orders = append(u.orders, &bo)
	u.mu.Unlock()
	u.emitChanged()
}

func (u *BoardUsecase) findLocked(orderID int64) *BoardOrder {
	for _, bo := range u.orders {
		if bo.Order.ID == orderID {
			return bo
		}
	}
	return nil
}
