package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"deliveryboard/internal/config"
	"deliveryboard/internal/domain/model"
	"deliveryboard/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// =====================
// レスポンス確認用（any禁止）
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	Role            string `json:"role"`
	EstablishmentID int64  `json:"establishment_id"`
	DisplayName     string `json:"display_name"`
}

// =====================
// helper
// =====================

func mustMakeJWT(t *testing.T, secret string, claims jwt.MapClaims, signingMethod jwt.SigningMethod) string {
	t.Helper()

	if _, ok := claims["exp"]; !ok {
		claims["exp"] = 9999999999
	}
	claims["iat"] = 1

	token := jwt.NewWithClaims(signingMethod, claims)

	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func decodeMWOK(t *testing.T, rec *httptest.ResponseRecorder) mwOKResponse {
	t.Helper()
	var r mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func protectedEcho(cfg config.Config, mws ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	all := append([]echo.MiddlewareFunc{middleware.AuthJWT(cfg)}, mws...)
	e.GET("/protected", func(c echo.Context) error {
		actor, _ := c.Get(middleware.CtxActorKey).(model.Actor)
		var est int64
		if actor.EstablishmentID != nil {
			est = *actor.EstablishmentID
		}
		return c.JSON(http.StatusOK, mwOKResponse{
			Role:            string(actor.Role),
			EstablishmentID: est,
			DisplayName:     actor.DisplayName,
		})
	}, all...)
	return e
}

// =====================
// AuthJWT
// =====================

// Authorizationなし => 401
func TestMiddleware_AuthJWT_Unauthorized_NoHeader(t *testing.T) {
	e := protectedEcho(config.Config{JWTSecret: "test-secret"})

	rec := runRequest(t, e, http.MethodGet, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeMWError(t, rec)
	assert.Equal(t, "unauthorized", body.Error)
}

// Bearer形式じゃない => 401
func TestMiddleware_AuthJWT_Unauthorized_BadScheme(t *testing.T) {
	e := protectedEcho(config.Config{JWTSecret: "test-secret"})

	rec := runRequest(t, e, http.MethodGet, "/protected", "Token abc.def.ghi")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 署名違い => 401
func TestMiddleware_AuthJWT_Unauthorized_BadSignature(t *testing.T) {
	e := protectedEcho(config.Config{JWTSecret: "correct-secret"})

	raw := mustMakeJWT(t, "wrong-secret", jwt.MapClaims{"role": "STAFF"}, jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// アルゴリズム違い（HS512）=> 401
func TestMiddleware_AuthJWT_Unauthorized_WrongAlg(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := protectedEcho(cfg)

	raw := mustMakeJWT(t, cfg.JWTSecret, jwt.MapClaims{"role": "STAFF"}, jwt.SigningMethodHS512)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// role無し => 401
func TestMiddleware_AuthJWT_Unauthorized_MissingRole(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := protectedEcho(cfg)

	raw := mustMakeJWT(t, cfg.JWTSecret, jwt.MapClaims{"name": "Maria"}, jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 正常：ctxにActorが入る
func TestMiddleware_AuthJWT_Success_SetsActor(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := protectedEcho(cfg)

	raw := mustMakeJWT(t, cfg.JWTSecret, jwt.MapClaims{
		"role": "OWNER",
		"est":  3,
		"name": "Maria",
	}, jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeMWOK(t, rec)
	assert.Equal(t, "OWNER", body.Role)
	assert.Equal(t, int64(3), body.EstablishmentID)
	assert.Equal(t, "Maria", body.DisplayName)
}

// estなし（全域管理者）=> スコープはnilのまま
func TestMiddleware_AuthJWT_Success_AdminWithoutScope(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := protectedEcho(cfg)

	raw := mustMakeJWT(t, cfg.JWTSecret, jwt.MapClaims{"role": "ADMIN"}, jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeMWOK(t, rec)
	assert.Equal(t, "ADMIN", body.Role)
	assert.Equal(t, int64(0), body.EstablishmentID)
}

// =====================
// ManagerRoleGuard
// =====================

// AuthJWT無しでGuardだけ => 401
func TestMiddleware_ManagerRoleGuard_Unauthorized_MissingContext(t *testing.T) {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	}, middleware.ManagerRoleGuard())

	rec := runRequest(t, e, http.MethodGet, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// STAFF => 403
func TestMiddleware_ManagerRoleGuard_Forbidden_Staff(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := protectedEcho(cfg, middleware.ManagerRoleGuard())

	raw := mustMakeJWT(t, cfg.JWTSecret, jwt.MapClaims{"role": "STAFF", "est": 3}, jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := decodeMWError(t, rec)
	assert.Equal(t, "admin or owner only", body.Error)
}

// OWNER => 200
func TestMiddleware_ManagerRoleGuard_Success_Owner(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := protectedEcho(cfg, middleware.ManagerRoleGuard())

	raw := mustMakeJWT(t, cfg.JWTSecret, jwt.MapClaims{"role": "OWNER", "est": 3}, jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
}
