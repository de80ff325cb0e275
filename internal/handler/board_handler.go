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

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getActorFromContext(c echo.Context) (model.Actor, bool) {
	v := c.Get(middleware.CtxActorKey)
	if v == nil {
		return model.Actor{}, false
	}

	actor, ok := v.(model.Actor)
	if !ok {
		return model.Actor{}, false
	}

	return actor, true
}

// /board のAPI（カラム取得とドラッグ遷移）
type BoardHandler struct {
	uc *usecase.BoardUsecase
}

// DI
func NewBoardHandler(uc *usecase.BoardUsecase) *BoardHandler {
	return &BoardHandler{uc: uc}
}

type MoveOrderRequest struct {
	Status string `json:"status"`
}

func (h *BoardHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/board")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.columns)
	g.POST("/orders/:id/move", h.move)
}

func (h *BoardHandler) columns(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	//毎回ストアから読み直してからカラムを組む
	if err := h.uc.Load(c.Request().Context(), actor); err != nil {
		return writeError(c, err)
	}

	cols := h.uc.Columns(actor, c.QueryParam("q"), c.QueryParam("status"))
	return c.JSON(http.StatusOK, cols)
}

func (h *BoardHandler) move(c echo.Context) error {
	actor, ok := getActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req MoveOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//ドロップ先カラムのステータスはストア語彙で来る
	target, ok2 := model.FromStoreStatus(model.StoreStatus(req.Status))
	if !ok2 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status"})
	}

	//ボードが空のまま遷移だけ叩かれるケースに備えて読み直す
	if err := h.uc.Load(c.Request().Context(), actor); err != nil {
		return writeError(c, err)
	}

	if err := h.uc.MoveOrder(c.Request().Context(), actor, orderID, target); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "moved"})
}
