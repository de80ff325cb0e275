package handler

import (
	"net/http"
	"strconv"

	"deliveryboard/internal/config"
	"deliveryboard/internal/domain/model"
	"deliveryboard/internal/middleware"
	"deliveryboard/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	board *usecase.BoardUsecase
	uc    *usecase.OrderDetailUsecase
}

func NewOrderHandler(board *usecase.BoardUsecase, uc *usecase.OrderDetailUsecase) *OrderHandler {
	return &OrderHandler{board: board, uc: uc}
}

type EditOrderRequest struct {
	CustomerName      string `json:"customer_name"`
	CustomerPhone     string `json:"customer_phone"`
	AddressStreet     string `json:"address_street"`
	AddressNumber     string `json:"address_number"`
	AddressDistrict   string `json:"address_district"`
	AddressComplement string `json:"address_complement"`
	CourierName       string `json:"courier_name"`
	Note              string `json:"note"`
	Status            string `json:"status"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.detail)
	g.PUT("/:id", h.save)
	g.PUT("/:id/status", h.changeStatus)

	//削除だけはADMIN/OWNERに限定
	g.DELETE("/:ref", h.delete, middleware.ManagerRoleGuard())
}

func (h *OrderHandler) list(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.board.Load(c.Request().Context(), actor); err != nil {
		return writeError(c, err)
	}

	//共有リストなので返す直前にもスコープで絞る
	return c.JSON(http.StatusOK, h.board.OrdersFor(actor))
}

func (h *OrderHandler) create(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Create(c.Request().Context(), actor, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) save(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req EditOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Save(c.Request().Context(), actor, id, usecase.EditInput{
		CustomerName:      req.CustomerName,
		CustomerPhone:     req.CustomerPhone,
		AddressStreet:     req.AddressStreet,
		AddressNumber:     req.AddressNumber,
		AddressDistrict:   req.AddressDistrict,
		AddressComplement: req.AddressComplement,
		CourierName:       req.CourierName,
		Note:              req.Note,
		Status:            req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) changeStatus(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ChangeStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	target, ok2 := model.FromStoreStatus(model.StoreStatus(req.Status))
	if !ok2 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status"})
	}

	if err := h.board.Load(c.Request().Context(), actor); err != nil {
		return writeError(c, err)
	}

	if err := h.uc.ChangeStatus(c.Request().Context(), actor, id, target); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *OrderHandler) delete(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	//レガシー参照の解決はメモリ上のリストを見るので先に読み直す
	if err := h.board.Load(c.Request().Context(), actor); err != nil {
		return writeError(c, err)
	}

	if err := h.uc.Delete(c.Request().Context(), actor, c.Param("ref")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
