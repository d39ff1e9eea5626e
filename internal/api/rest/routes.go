package rest

import (
	"github.com/Dhoini/customer-service/internal/api/rest/handlers"
	"github.com/Dhoini/customer-service/internal/api/rest/middleware"
	"github.com/Dhoini/customer-service/internal/auth"
	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/service"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services зависимости обработчиков
type Services struct {
	Customers service.CustomerService
	Values    service.ValuesService
	Media     service.MediaService
	Accounts  service.AccountService
	Tokens    *auth.TokenService
	Health    map[string]handlers.HealthCheck
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(log *logger.Logger, registry *prometheus.Registry, svc Services) *gin.Engine {
	r := gin.New()

	// Подключение middleware
	r.Use(middleware.RequestLogger(log))
	r.Use(gin.Recovery())

	health := handlers.NewHealthHandler(svc.Health)
	r.GET("/health", health.Live)
	r.GET("/health/ready", health.Ready)

	// Prometheus метрики
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	jwt := middleware.NewJWTMiddleware(log, svc.Tokens)
	customerHandler := handlers.NewCustomerHandler(svc.Customers, log)
	valuesHandler := handlers.NewValuesHandler(svc.Values, log)
	streamHandler := handlers.NewStreamHandler(svc.Customers, log)
	mediaHandler := handlers.NewMediaHandler(svc.Media, log)
	authHandler := handlers.NewAuthHandler(svc.Accounts, svc.Tokens, log)

	user := jwt.RequireAuth(domain.RoleAdmin, domain.RoleCustomer)
	admin := jwt.RequireAuth(domain.RoleAdmin)

	v1 := r.Group("/api/v1")
	v1.Use(jwt.Authenticate())
	{
		// Клиенты
		customers := v1.Group("/customers")
		{
			customers.POST("", customerHandler.CreateCustomer)
			customers.GET("", user, customerHandler.GetCustomers)
			customers.GET("/:id", user, customerHandler.GetCustomer)
			customers.PUT("/:id", user, customerHandler.UpdateCustomer)
			customers.PATCH("/:id", user, customerHandler.PatchCustomer)
			customers.DELETE("/:id", admin, customerHandler.DeleteCustomer)
			customers.DELETE("", admin, customerHandler.DeleteCustomerByEmail)
		}

		values := v1.Group("/values", user)
		{
			values.GET("/lastnames/:prefix", valuesHandler.GetLastNames)
			values.GET("/emails/:prefix", valuesHandler.GetEmails)
			values.GET("/versions/:id", valuesHandler.GetVersion)
		}

		v1.GET("/stream/customers", user, streamHandler.StreamCustomers)

		media := v1.Group("/media", user)
		{
			media.GET("/:id", mediaHandler.Download)
			media.PUT("/:id", mediaHandler.Upload)
		}

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/roles", user, authHandler.Roles)
		}
	}

	return r
}
