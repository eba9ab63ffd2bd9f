// Package http registers the API routes and delegates to module services.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"romuo/internal/http/handlers"
	"romuo/internal/http/middleware"
	"romuo/internal/identity"
	"romuo/internal/modules/catalog"
	"romuo/internal/modules/dispatch"
	"romuo/internal/modules/fleet"
	"romuo/internal/modules/pricing"
	"romuo/internal/modules/ride"
	"romuo/internal/modules/zone"
)

type ServerDeps struct {
	Rides    *ride.Service
	Fleet    *fleet.Service
	Zones    *zone.Service
	Pricing  *pricing.Service
	Catalog  *catalog.Catalog
	Dispatch *dispatch.Service
	Resolver identity.Resolver
	Log      *zap.Logger
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(s.deps.Log),
		middleware.Logging(s.deps.Log),
		middleware.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) { c.String(200, "OK") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	vehicleHandler := handlers.NewVehicleHandler(s.deps.Catalog)
	pricingHandler := handlers.NewPricingHandler(s.deps.Pricing)
	rideHandler := handlers.NewRideHandler(s.deps.Rides, s.deps.Fleet)
	driverHandler := handlers.NewDriverHandler(s.deps.Rides, s.deps.Fleet, s.deps.Dispatch)
	adminHandler := handlers.NewAdminHandler(s.deps.Rides, s.deps.Fleet, s.deps.Zones, s.deps.Dispatch)

	api := r.Group("/api")

	// public catalog and quoting
	api.GET("/vehicles/classes", vehicleHandler.ListClasses)
	api.GET("/vehicles/suggest", vehicleHandler.Suggest)
	api.POST("/pricing/quote", pricingHandler.Quote)

	auth := api.Group("", middleware.Auth(s.deps.Resolver))

	rides := auth.Group("/rides")
	rides.POST("", rideHandler.Create)
	rides.GET("", rideHandler.ListMine)
	rides.GET("/:id", rideHandler.Get)
	rides.GET("/:id/history", rideHandler.History)
	rides.POST("/:id/cancel", rideHandler.Cancel)

	driver := auth.Group("/driver", middleware.RequireRole(identity.RoleDriver))
	driver.GET("/rides/pending", driverHandler.PendingRides)
	driver.POST("/rides/:id/accept", driverHandler.Accept)
	driver.POST("/rides/:id/decline", driverHandler.Decline)
	driver.POST("/rides/:id/en_route", driverHandler.EnRoute)
	driver.POST("/rides/:id/arrived", driverHandler.Arrived)
	driver.POST("/rides/:id/start", driverHandler.Start)
	driver.POST("/rides/:id/complete", driverHandler.Complete)
	driver.GET("/earnings", driverHandler.Earnings)
	driver.POST("/location", driverHandler.UpdateLocation)
	driver.POST("/status", driverHandler.UpdateStatus)

	admin := auth.Group("/admin", middleware.RequireRole(identity.RoleAdmin))
	admin.GET("/dispatch", adminHandler.Board)
	admin.GET("/calendar", adminHandler.Calendar)
	admin.POST("/rides/:id/assign", adminHandler.AssignRide)
	admin.POST("/drivers", adminHandler.RegisterDriver)
	admin.POST("/drivers/:id/vehicle", adminHandler.AssignVehicle)
	admin.POST("/vehicles", adminHandler.RegisterVehicle)
	admin.GET("/zones", adminHandler.ListZones)
	admin.POST("/zones", adminHandler.CreateZone)
	admin.PUT("/zones/:id", adminHandler.UpdateZone)
	admin.DELETE("/zones/:id", adminHandler.DeactivateZone)

	return r
}
