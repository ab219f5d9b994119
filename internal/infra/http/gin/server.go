package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"wayfarer/internal/infra/config"
	"wayfarer/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Catalog        CatalogHTTP
	Reviews        ReviewsHTTP
	Bookings       BookingsHTTP
	Images         ImagesHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.GET("/auth/me", h.Auth.Me)
		api.POST("/auth/otp/send", h.Auth.SendCode)
		api.POST("/auth/otp/verify", h.Auth.VerifyCode)
	}
	if h.Catalog != nil {
		api.GET("/destinations", h.Catalog.ListDestinations)
		api.POST("/destinations", h.Catalog.CreateDestination)
		api.GET("/destinations/:id", h.Catalog.GetDestination)
		api.DELETE("/destinations/:id", h.Catalog.DeleteDestination)

		catalogGroup := api.Group("/catalog/:kind")
		catalogGroup.GET("", h.Catalog.ListItems)
		catalogGroup.POST("", h.Catalog.CreateItem)
		catalogGroup.GET("/:id", h.Catalog.GetItem)
		catalogGroup.PATCH("/:id", h.Catalog.UpdateItem)
		catalogGroup.DELETE("/:id", h.Catalog.DeleteItem)
	}
	if h.Reviews != nil {
		reviewGroup := api.Group("/reviews")
		reviewGroup.POST("", h.Reviews.Create)
		reviewGroup.GET("/me", h.Reviews.ListMine)
		reviewGroup.GET("/item/:kind/:id", h.Reviews.ListByItem)
		reviewGroup.GET("/item/:kind/:id/can-review", h.Reviews.CanReview)
		reviewGroup.PUT("/:id", h.Reviews.Update)
		reviewGroup.DELETE("/:id", h.Reviews.Delete)
	}
	if h.Bookings != nil {
		bookingGroup := api.Group("/bookings")
		bookingGroup.POST("", h.Bookings.Create)
		bookingGroup.GET("", h.Bookings.ListAll)
		bookingGroup.GET("/me", h.Bookings.ListMine)
		bookingGroup.GET("/:id", h.Bookings.Get)
		bookingGroup.PATCH("/:id/status", h.Bookings.UpdateStatus)
		bookingGroup.DELETE("/:id", h.Bookings.Delete)
		bookingGroup.POST("/:id/payment", h.Bookings.ProcessPayment)
	}
	if h.Images != nil {
		imageGroup := api.Group("/images")
		imageGroup.POST("/upload", h.Images.Upload)
		imageGroup.POST("/upload/batch", h.Images.UploadBatch)
		imageGroup.GET("/entity/:type/:id", h.Images.ListByEntity)
		imageGroup.GET("/:id", h.Images.Get)
		imageGroup.PATCH("/:id", h.Images.UpdateMetadata)
		imageGroup.DELETE("/:id", h.Images.Delete)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
