package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nextserve/booking-core-api/internal/middleware"
	"github.com/nextserve/booking-core-api/internal/models"
	"github.com/nextserve/booking-core-api/internal/service"
)

// RegisterRoutes wires the API surface. Sync endpoints are gated to owners
// and dispatchers; everything else relies on service-level role checks.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, schedules *ScheduleHandler, bookings *BookingHandler, preferences *PreferenceHandler, eligibility *EligibilityHandler) {
	api := r.Group(prefix)
	api.Use(middleware.JWT(auth))

	manageOnly := middleware.RequireRoles(models.RoleOwner, models.RoleDispatcher)

	providers := api.Group("/providers/:id")
	{
		providers.GET("/schedule", schedules.GetSchedule)
		providers.PUT("/schedule", schedules.SetWeeklySchedule)
		providers.POST("/schedule/blocks", schedules.BlockInterval)
		providers.POST("/schedule/apply-business-hours", manageOnly, schedules.ApplyBusinessHours)
		providers.GET("/preferences", preferences.Get)
		providers.PUT("/preferences", preferences.Upsert)
	}

	businesses := api.Group("/businesses/:id")
	{
		businesses.POST("/schedule/sync-inherited", manageOnly, schedules.SyncAllInherited)
		businesses.GET("/bookings", bookings.List)
		businesses.GET("/eligibility", eligibility.Resolve)
	}

	bookingRoutes := api.Group("/bookings/:id")
	{
		bookingRoutes.POST("/transition", bookings.Transition)
		bookingRoutes.POST("/assign", bookings.Assign)
	}
}
