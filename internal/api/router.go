package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/atlasgate/visaport/internal/auth"
)

// SetupRouter builds the gin engine with the portal, auth and admin
// route groups. allowedOrigins controls CORS; empty means same-origin
// deployments and allows everything.
func SetupRouter(h *Handler, jwtService *auth.JWTService, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")

	// Public portal endpoints. Customers authenticate with nothing but
	// their tracking code.
	portal := api.Group("/portal")
	{
		portal.GET("/meta", h.PortalMeta)
		portal.GET("/fields", h.PortalSchema)
		portal.GET("/content/:country", h.PortalContent)
		portal.POST("/applications", h.PortalSubmit)
		portal.GET("/applications/:code", h.PortalLookup)
		portal.PUT("/applications/:code/personal", h.PortalUpdatePersonal)
		portal.POST("/applications/:code/uploads", h.PortalRegisterUpload)

		portal.POST("/groups", h.PortalCreateGroup)
		portal.GET("/groups/:id/members", h.PortalGroupMembers)
		portal.POST("/groups/:id/members", h.PortalAddGroupMember)
		portal.PUT("/groups/:id/members/:memberId", h.PortalUpdateGroupMember)
		portal.DELETE("/groups/:id/members/:memberId", h.PortalDeleteGroupMember)
		portal.POST("/groups/:id/submit", h.PortalSubmitGroup)
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)

		authed := authGroup.Group("")
		authed.Use(auth.Middleware(jwtService))
		authed.GET("/me", h.Me)
		authed.POST("/change-password", h.ChangePassword)
	}

	// Back office. Staff can work applications; catalog, settings and
	// user management need the admin role.
	admin := api.Group("/admin")
	admin.Use(auth.Middleware(jwtService))
	{
		staff := admin.Group("")
		staff.Use(auth.RequireRole(auth.RoleStaff, auth.RoleAdmin))
		{
			staff.GET("/applications", h.ListApplications)
			staff.GET("/applications/:id", h.GetApplication)
			staff.PUT("/applications/:id", h.UpdateApplication)
			staff.DELETE("/applications/:id", h.DeleteApplication)
		}

		root := admin.Group("")
		root.Use(auth.RequireRole(auth.RoleAdmin))
		{
			root.GET("/countries", h.ListCountries)
			root.POST("/countries", h.CreateCountry)
			root.PUT("/countries/:id", h.UpdateCountry)
			root.DELETE("/countries/:id", h.DeleteCountry)

			root.GET("/visa-types", h.ListVisaTypes)
			root.POST("/visa-types", h.CreateVisaType)
			root.PUT("/visa-types/:id", h.UpdateVisaType)
			root.DELETE("/visa-types/:id", h.DeleteVisaType)

			root.GET("/field-definitions", h.ListFieldDefinitions)
			root.POST("/field-definitions", h.CreateFieldDefinition)
			root.PUT("/field-definitions/:id", h.UpdateFieldDefinition)
			root.DELETE("/field-definitions/:id", h.DeleteFieldDefinition)

			root.GET("/field-assignments", h.ListFieldAssignments)
			root.POST("/field-assignments", h.CreateFieldAssignment)
			root.PUT("/field-assignments/:id", h.UpdateFieldAssignment)
			root.DELETE("/field-assignments/:id", h.DeleteFieldAssignment)

			root.GET("/smart-machines", h.ListSmartMachines)
			root.GET("/smart-templates", h.ListSmartTemplates)
			root.POST("/smart-templates", h.CreateSmartTemplate)
			root.PUT("/smart-templates/:id", h.UpdateSmartTemplate)
			root.DELETE("/smart-templates/:id", h.DeleteSmartTemplate)

			root.GET("/smart-assignments", h.ListSmartAssignments)
			root.POST("/smart-assignments", h.CreateSmartAssignment)
			root.DELETE("/smart-assignments/:id", h.DeleteSmartAssignment)

			root.GET("/contents", h.ListPortalContents)
			root.POST("/contents", h.CreatePortalContent)
			root.PUT("/contents/:id", h.UpdatePortalContent)
			root.DELETE("/contents/:id", h.DeletePortalContent)

			root.GET("/settings", h.GetSettings)
			root.PUT("/settings", h.UpdateSetting)

			root.GET("/users", h.ListUsers)
			root.POST("/users", h.CreateUser)
			root.PUT("/users/:id", h.UpdateUser)

			root.GET("/audit-logs", h.ListAuditLogs)
		}
	}

	return router
}
