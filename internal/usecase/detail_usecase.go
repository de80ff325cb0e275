package usecase

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"deliveryboard/internal/domain/model"
	repo "deliveryboard/internal/repository"
)

// OrderDetailUsecase は詳細モーダルの裏側。
// 永続化はリポジトリに委譲して、結果はボード（BoardUsecase）へ反映する。
type OrderDetailUsecase struct {
	board     *BoardUsecase
	tx        repo.TransactionManager
	orderRepo repo.OrderRepository
	itemRepo  repo.OrderLineItemRepository
	eventRepo repo.StatusEventRepository
	notifier  StatusNotifier
}

func NewOrderDetailUsecase(
	board *BoardUsecase,
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	itemRepo repo.OrderLineItemRepository,
	eventRepo repo.StatusEventRepository,
	notifier StatusNotifier,
) *OrderDetailUsecase {
	return &OrderDetailUsecase{
		board:     board,
		tx:        tx,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		eventRepo: eventRepo,
		notifier:  notifier,
	}
}

type LineItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"line_total"`
	Note      string `json:"note,omitempty"`
}

type HistoryOutput struct {
	Status    string    `json:"status"`
	ActorName string    `json:"actor_name"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderDetailOutput struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`
	DisplayID   int64  `json:"display_id"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`

	CustomerName      string `json:"customer_name"`
	CustomerPhone     string `json:"customer_phone"`
	AddressStreet     string `json:"address_street"`
	AddressNumber     string `json:"address_number"`
	AddressDistrict   string `json:"address_district"`
	AddressComplement string `json:"address_complement"`

	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Discount    int64 `json:"discount"`
	Total       int64 `json:"total"`

	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status"`
	CourierName   string `json:"courier_name"`
	Note          string `json:"note"`
	Priority      string `json:"priority"`
	EtaMinutes    *int   `json:"eta_minutes"`

	Items     []LineItemOutput `json:"items"`
	History   []HistoryOutput  `json:"history"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Get は1注文の詳細（明細・履歴込み）。見つからないのは404。
// スコープ外の注文も404（存在を教えない）。
func (u *OrderDetailUsecase) Get(ctx context.Context, actor model.Actor, orderID int64) (OrderDetailOutput, error) {
	if orderID <= 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, found, err := u.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found || !actor.CanAccess(o.EstablishmentID) {
		return OrderDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	items, err := u.itemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	history, err := u.eventRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	o.ReconcileTotals(items)
	return toOrderDetailOutput(o, items, history), nil
}

type EditInput struct {
	CustomerName      string
	CustomerPhone     string
	AddressStreet     string
	AddressNumber     string
	AddressDistrict   string
	AddressComplement string
	CourierName       string
	Note              string
	//空ならステータスは変更しない
	Status string
}

// Save は編集フォームの一括保存。検証はtrimだけ（仕様どおり）。
// ステータスが変わる場合はボードと同じ遷移経路（履歴追記＋通知）を通す。
// 失敗時はローカルに何も反映しない（モーダルは開いたままにできる）。
func (u *OrderDetailUsecase) Save(ctx context.Context, actor model.Actor, orderID int64, in EditInput) (OrderDetailOutput, error) {
	if orderID <= 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, found, err := u.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found || !actor.CanAccess(o.EstablishmentID) {
		return OrderDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	patch := repo.OrderDetailsPatch{
		CustomerName:      strings.TrimSpace(in.CustomerName),
		CustomerPhone:     strings.TrimSpace(in.CustomerPhone),
		AddressStreet:     strings.TrimSpace(in.AddressStreet),
		AddressNumber:     strings.TrimSpace(in.AddressNumber),
		AddressDistrict:   strings.TrimSpace(in.AddressDistrict),
		AddressComplement: strings.TrimSpace(in.AddressComplement),
		CourierName:       strings.TrimSpace(in.CourierName),
		Note:              strings.TrimSpace(in.Note),
	}

	//ステータス変更はストア語彙で受けて内部語彙へ写す
	var newStatus model.OrderStatus
	statusChanged := false
	if s := strings.TrimSpace(in.Status); s != "" {
		mapped, ok := model.FromStoreStatus(model.StoreStatus(s))
		if !ok {
			return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		if mapped != o.Status {
			newStatus = mapped
			statusChanged = true
		}
	}

	event := model.StatusEvent{
		OrderID:   orderID,
		Status:    newStatus,
		ActorName: actor.HistoryName(),
		CreatedAt: time.Now(),
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().UpdateDetails(ctx, orderID, patch); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if statusChanged {
			if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
				if err == repo.ErrNotFound {
					return NewHTTPError(http.StatusNotFound, "not found")
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := r.StatusEvents().Create(ctx, event); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		return nil
	})
	if err != nil {
		return OrderDetailOutput{}, err
	}

	//確定後にだけボードへ反映
	u.board.ApplyDetails(orderID, patch)
	if statusChanged {
		u.board.ApplyStatus(orderID, event)
		u.notifier.Dispatch(o.EstablishmentID, newStatus, o.OrderNumber)
	}

	return u.Get(ctx, actor, orderID)
}

// ChangeStatus は詳細画面からの単体ステータス変更。
// ボードのドラッグと完全に同じ経路を通す。
func (u *OrderDetailUsecase) ChangeStatus(ctx context.Context, actor model.Actor, orderID int64, status model.OrderStatus) error {
	return u.board.MoveOrder(ctx, actor, orderID, status)
}

// Delete はカスケード削除。ADMINかOWNERだけが実行できる。
// refは表示ID（レガシーでは注文番号と食い違うことがある）なので、
// ストア側の正しい注文に解決してから主キーで削除する。
func (u *OrderDetailUsecase) Delete(ctx context.Context, actor model.Actor, ref string) error {
	if !actor.CanDelete() {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	target, found, err := u.resolveOrderRef(ctx, ref)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !found || !actor.CanAccess(target.EstablishmentID) {
		//通信エラーとは区別した専用メッセージ。スコープ外も同じ扱い。
		return NewHTTPError(http.StatusNotFound, "order not found")
	}

	if _, err := u.orderRepo.Delete(ctx, target.ID); err != nil {
		if err == repo.ErrNotFound {
			//明細が消えていてもorder行が0件なら「消えていない」扱い
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//確定後にボードから外す
	u.board.Remove(target.ID)
	return nil
}

// resolveOrderRef は表示IDからストア上の注文を解決する。
// 比較は必ずこの順で行う：
//  1. 注文番号の完全一致
//  2. 文字列化した表示IDとの一致（レガシーレコードの型ズレ対策）
//  3. 数値化しての一致（表示ID or 主キー）
func (u *OrderDetailUsecase) resolveOrderRef(ctx context.Context, ref string) (model.Order, bool, error) {
	//1) 完全一致
	o, found, err := u.orderRepo.FindByOrderNumber(ctx, ref)
	if err != nil {
		return model.Order{}, false, err
	}
	if found {
		return o, true, nil
	}

	candidates := u.board.Orders()

	//2) 文字列コアース
	for _, bo := range candidates {
		if strconv.FormatInt(bo.Order.DisplayID(), 10) == ref {
			return bo.Order, true, nil
		}
	}

	//3) 数値コアース
	n, convErr := strconv.ParseInt(ref, 10, 64)
	if convErr != nil {
		return model.Order{}, false, nil
	}
	for _, bo := range candidates {
		if bo.Order.DisplayID() == n || bo.Order.ID == n {
			return bo.Order, true, nil
		}
	}

	return model.Order{}, false, nil
}

type CreateLineItemInput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Note      string `json:"note"`
}

type CreateOrderInput struct {
	CustomerName      string                `json:"customer_name"`
	CustomerPhone     string                `json:"customer_phone"`
	AddressStreet     string                `json:"address_street"`
	AddressNumber     string                `json:"address_number"`
	AddressDistrict   string                `json:"address_district"`
	AddressComplement string                `json:"address_complement"`
	PaymentMethod     string                `json:"payment_method"`
	DeliveryFee       int64                 `json:"delivery_fee"`
	Discount          int64                 `json:"discount"`
	Note              string                `json:"note"`
	Items             []CreateLineItemInput `json:"items"`
}

// Create は注文の新規作成。明細ゼロと店舗スコープなしは通信前に弾く。
// orderのinsert後に明細insertが失敗した場合の補償はリポジトリ側。
func (u *OrderDetailUsecase) Create(ctx context.Context, actor model.Actor, in CreateOrderInput) (OrderDetailOutput, error) {
	if len(in.Items) == 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "at least one line item required")
	}
	if actor.EstablishmentID == nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "establishment scope required")
	}

	now := time.Now()

	items := make([]model.OrderLineItem, 0, len(in.Items))
	var subtotal int64
	for _, it := range in.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, model.OrderLineItem{
			ProductID:           it.ProductID,
			ProductNameSnapshot: strings.TrimSpace(it.Name),
			UnitPriceSnapshot:   it.Price,
			Quantity:            qty,
			Note:                strings.TrimSpace(it.Note),
			CreatedAt:           now,
		})
		subtotal += it.Price * qty
	}

	order := model.Order{
		OrderNumber:       newOrderNumber(now),
		EstablishmentID:   *actor.EstablishmentID,
		Status:            model.StatusRequested,
		CustomerName:      strings.TrimSpace(in.CustomerName),
		CustomerPhone:     strings.TrimSpace(in.CustomerPhone),
		AddressStreet:     strings.TrimSpace(in.AddressStreet),
		AddressNumber:     strings.TrimSpace(in.AddressNumber),
		AddressDistrict:   strings.TrimSpace(in.AddressDistrict),
		AddressComplement: strings.TrimSpace(in.AddressComplement),
		Subtotal:          subtotal,
		DeliveryFee:       in.DeliveryFee,
		Discount:          in.Discount,
		Total:             subtotal + in.DeliveryFee - in.Discount,
		PaymentMethod:     strings.TrimSpace(in.PaymentMethod),
		PaymentStatus:     model.PaymentPending,
		Note:              strings.TrimSpace(in.Note),
		Priority:          model.PriorityNormal,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	orderID, err := u.orderRepo.Create(ctx, order, items)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	order.ID = orderID
	for i := range items {
		items[i].OrderID = orderID
	}

	//初期履歴はベストエフォート（注文自体はもう存在する）
	event := model.StatusEvent{
		OrderID:   orderID,
		Status:    model.StatusRequested,
		ActorName: actor.HistoryName(),
		CreatedAt: now,
	}
	_ = u.eventRepo.Create(ctx, event)

	u.board.Add(BoardOrder{
		Order:   order,
		Items:   items,
		History: []model.StatusEvent{event},
	})

	return toOrderDetailOutput(order, items, []model.StatusEvent{event}), nil
}

// タイムスタンプ由来の注文番号トークン。
func newOrderNumber(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

func toOrderDetailOutput(o model.Order, items []model.OrderLineItem, history []model.StatusEvent) OrderDetailOutput {
	outItems := make([]LineItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, LineItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
			Note:      it.Note,
		})
	}

	outHistory := make([]HistoryOutput, 0, len(history))
	for _, ev := range history {
		outHistory = append(outHistory, HistoryOutput{
			Status:    string(ev.Status),
			ActorName: ev.ActorName,
			CreatedAt: ev.CreatedAt,
		})
	}

	return OrderDetailOutput{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		DisplayID:   o.DisplayID(),
		Status:      string(o.Status),
		StatusLabel: model.MetaFor(o.Status).Label,

		CustomerName:      o.CustomerName,
		CustomerPhone:     o.CustomerPhone,
		AddressStreet:     o.AddressStreet,
		AddressNumber:     o.AddressNumber,
		AddressDistrict:   o.AddressDistrict,
		AddressComplement: o.AddressComplement,

		Subtotal:    o.Subtotal,
		DeliveryFee: o.DeliveryFee,
		Discount:    o.Discount,
		Total:       o.Total,

		PaymentMethod: o.PaymentMethod,
		PaymentStatus: string(o.PaymentStatus),
		CourierName:   o.CourierName,
		Note:          o.Note,
		Priority:      string(o.Priority),
		EtaMinutes:    o.EtaMinutes,

		Items:     outItems,
		History:   outHistory,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
