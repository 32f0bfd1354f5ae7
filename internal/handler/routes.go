package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hrm-go/roster-api/internal/middleware"
	"github.com/hrm-go/roster-api/internal/models"
)

// Handlers bundles the HTTP handlers mounted under the API prefix.
type Handlers struct {
	Staff   *StaffHandler
	Shifts  *ShiftHandler
	Roster  *RosterHandler
	Reports *ReportHandler
}

// RouteOptions tunes route registration.
type RouteOptions struct {
	JWTSecret      string
	ExportsEnabled bool
}

// RegisterRoutes mounts all API routes on the given group. Every route sits
// behind JWT verification; mutations additionally require the ADMIN or
// HR_MANAGER role.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, opts RouteOptions) {
	api.Use(middleware.JWT(opts.JWTSecret))

	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleHRManager, models.RoleStaff)
	managers := middleware.RequireRoles(models.RoleAdmin, models.RoleHRManager)

	staff := api.Group("/staff")
	{
		staff.GET("", anyRole, h.Staff.List)
		staff.GET("/:id", anyRole, h.Staff.Get)
		staff.POST("", managers, h.Staff.Create)
		staff.PUT("/:id", managers, h.Staff.Update)
		staff.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.Staff.Delete)
	}

	shifts := api.Group("/shifts")
	{
		shifts.GET("", anyRole, h.Shifts.List)
		shifts.GET("/:id", anyRole, h.Shifts.Get)
		shifts.POST("", managers, h.Shifts.Create)
		shifts.PATCH("/:id/status", managers, h.Shifts.UpdateStatus)
		shifts.DELETE("/:id", managers, h.Shifts.Delete)
	}

	roster := api.Group("/roster")
	{
		roster.POST("/generate", managers, h.Roster.Generate)
		roster.POST("/save", managers, h.Roster.Save)
		roster.POST("/swap", managers, h.Roster.Swap)
		roster.POST("/metrics", managers, h.Roster.Metrics)
		roster.GET("/compliance/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleHRManager), "SELF"), h.Roster.Compliance)
		if opts.ExportsEnabled && h.Reports != nil {
			roster.GET("/export", managers, h.Reports.Export)
		}
	}
}
