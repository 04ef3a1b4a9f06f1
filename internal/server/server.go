package server

import (
	"time"

	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Post    *handler.PostHandler
	Admin   *handler.AdminHandler
}

// New はechoを組み立ててルートを登録する。
func New(cfg config.Config, h Handlers, log *logrus.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(requestLogger(log))

	RegisterRoutes(e, cfg, h)

	return e
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e)
	h.Order.RegisterRoutes(e, cfg)
	h.Post.RegisterRoutes(e)
	h.Admin.RegisterRoutes(e, cfg)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// 1リクエスト1行の構造化ログ
func requestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			log.WithFields(logrus.Fields{
				"method":  c.Request().Method,
				"path":    c.Request().URL.Path,
				"status":  c.Response().Status,
				"took_ms": time.Since(start).Milliseconds(),
			}).Info("request")

			return err
		}
	}
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
