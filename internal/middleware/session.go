package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// カートを紐づけるセッショントークン
	SessionCookieName = "cart_session"
	CtxSessionToken   = "session_token" // string
)

const sessionCookieTTL = 30 * 24 * time.Hour

// Session はリクエストにセッショントークンを割り当てる。
// クッキーが無ければ新規発行して返す。ログイン不要のカート操作もこれで識別する。
func Session() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ""

			if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				token = cookie.Value
			}

			if token == "" {
				token = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(sessionCookieTTL),
				})
			}

			c.Set(CtxSessionToken, token)
			return next(c)
		}
	}
}
