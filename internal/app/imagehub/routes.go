// Package imagehub предоставляет маршруты для основного приложения.
package imagehub

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/auth/login"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/auth/register"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/billing/customerfetch"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/billing/subcancel"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/billing/subcreate"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/billing/subfetch"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/billing/subresume"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/billing/subupdate"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/library/list"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/library/uploadmultiple"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/library/uploadsingle"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/handlers/user/details"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/middlewarectx"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/http/response"
	authservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/auth"
	billingservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/billing"
	libraryservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/library"
	userservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	userService *userservice.UserService,
	libraryService *libraryservice.LibraryService,
	billingService *billingservice.BillingService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.CORSMiddleware,
		middlewarectx.SecurityHeadersMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/signup", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))

			r.Get("/fetch-user-details/{userId}", details.New(logger, userService).ServeHTTP)
			r.Get("/images/{userId}", list.New(logger, libraryService).ServeHTTP)

			// Загрузки ограничены по частоте с одного адреса
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(logger, rate.Limit(5), 10))
				r.Post("/image-upload/{id}", uploadsingle.New(logger, libraryService).ServeHTTP)

				// Пакетная загрузка только для активных подписчиков
				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.EntitlementMiddleware(logger, userService))
					r.Post("/image-upload-multiple/{id}", uploadmultiple.New(logger, libraryService).ServeHTTP)
				})
			})

			r.Post("/create-subscription", subcreate.New(logger, billingService).ServeHTTP)
			r.Post("/update-subscription/{userId}", subupdate.New(logger, billingService).ServeHTTP)
			r.Post("/resume-subscription/{userId}", subresume.New(logger, billingService).ServeHTTP)
			r.Post("/cancel-subscription/{userId}", subcancel.New(logger, billingService).ServeHTTP)
			r.Get("/fetch-subscription/{userId}", subfetch.New(logger, billingService).ServeHTTP)
			r.Get("/fetch-customer/{userId}", customerfetch.New(logger, billingService).ServeHTTP)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		render.Status(req, http.StatusNotFound)
		render.JSON(w, req, response.Error(response.MsgRouteNotFound))
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
