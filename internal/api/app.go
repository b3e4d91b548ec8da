package api

import (
	"errors"

	"github.com/SundayYogurt/logistics_service/internal/api/rest/handlers"
	"github.com/SundayYogurt/logistics_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/SundayYogurt/logistics_service/internal/helper/utils"
	"github.com/SundayYogurt/logistics_service/internal/interfaces"
	"github.com/SundayYogurt/logistics_service/internal/rate"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/SundayYogurt/logistics_service/pkg/clock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Infra is everything the services need from the outside world.
type Infra struct {
	Store        repository.Store
	Clock        clock.Clock
	Log          *zap.Logger
	Registry     *prometheus.Registry
	Producer     interfaces.ProducerHandler
	Limiter      rate.Limiter
	Blobs        interfaces.BlobStore
	SMS          interfaces.SMSGateway
	Auth         helper.Auth
	MediaBaseURL string
	// MaxWidth enables image normalization when positive.
	MaxWidth int
}

type Services struct {
	Auth       services.AuthService
	OTP        services.OTPService
	Users      services.UserService
	KYC        services.KYCService
	Tasks      services.TaskService
	Wallets    services.WalletService
	Businesses services.BusinessService
	Audit      services.AuditService

	authHelper helper.Auth
}

func NewServices(in Infra) *Services {
	var metrics *services.Metrics
	if in.Registry != nil {
		metrics = services.NewMetrics(in.Registry)
	}
	deps := services.Deps{
		Store:    in.Store,
		Clock:    in.Clock,
		Log:      in.Log,
		Metrics:  metrics,
		Producer: in.Producer,
	}

	media := services.NewMediaStore(in.Blobs, in.MediaBaseURL, in.Clock).WithNormalization(in.MaxWidth)
	otp := services.NewOTPService(deps, in.SMS, in.Limiter)
	users := services.NewUserService(deps, media)

	return &Services{
		Auth:       services.NewAuthService(deps, otp, users, in.Auth),
		OTP:        otp,
		Users:      users,
		KYC:        services.NewKYCService(deps, media),
		Tasks:      services.NewTaskService(deps),
		Wallets:    services.NewWalletService(deps),
		Businesses: services.NewBusinessService(deps),
		Audit:      services.NewAuditService(deps),
		authHelper: in.Auth,
	}
}

type AppOptions struct {
	AllowOrigins string
	// MediaRoot is served under /media when media lives on local disk.
	MediaRoot string
	Registry  *prometheus.Registry
}

func NewApp(svc *Services, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    services.MaxMediaBytes + 1<<20,
		ErrorHandler: errorHandler,
	})

	// ---------- CORS ----------
	origins := opts.AllowOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: origins != "*",
	}))

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if opts.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}
	if opts.MediaRoot != "" {
		app.Static("/media", opts.MediaRoot)
	}

	// ---------- Routes ----------
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.OTP)
	authHandler.SetupRoutes(app.Group("/api"))

	api := app.Group("/api", middleware.AuthMiddleware(svc.authHelper, svc.Users))
	admin := api.Group("/admin", middleware.AdminOnly())

	authHandler.SetupAdminRoutes(admin)
	handlers.NewUserHandler(svc.Users).SetupRoutes(api, admin)
	handlers.NewKYCHandler(svc.KYC).SetupRoutes(api, admin)
	handlers.NewTaskHandler(svc.Tasks).SetupRoutes(api, admin)
	handlers.NewWalletHandler(svc.Wallets).SetupRoutes(api, admin)
	handlers.NewBusinessHandler(svc.Businesses).SetupRoutes(admin)
	handlers.NewAuditHandler(svc.Audit).SetupRoutes(admin)

	return app
}

func errorHandler(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	return utils.ResponseError(ctx, status, err.Error())
}
