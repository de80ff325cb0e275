package middleware

import (
	"net/http"

	"deliveryboard/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているActorが削除系操作を許されるロールかを確認します。

func ManagerRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Get(CtxActorKey)
			actor, ok := raw.(model.Actor)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//STAFFは拒否、ADMINとOWNERだけ許可
			if !actor.CanDelete() {
				return c.JSON(http.StatusForbidden, errorJSON("admin or owner only"))
			}

			return next(c)
		}
	}
}
