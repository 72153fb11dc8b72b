// internal/api/routes/routes.go
package routes

import (
	"time"

	"greencycle-api-server/internal/api/handlers"
	"greencycle-api-server/internal/api/middleware"
	"greencycle-api-server/internal/lifecycle"
	"greencycle-api-server/internal/models"
	"greencycle-api-server/internal/s3"
	"greencycle-api-server/internal/socket"
	"greencycle-api-server/internal/stats"
	"greencycle-api-server/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires every handler into the route tree.
func SetupRouter(
	st store.Store,
	engine *lifecycle.Engine,
	aggregator *stats.Aggregator,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := &handlers.AuthHandler{Store: st}
	profileHandler := &handlers.ProfileHandler{Store: st, Stats: aggregator}
	centerHandler := &handlers.CenterHandler{Store: st, Uploader: s3Uploader}
	requestHandler := &handlers.RequestHandler{Store: st, Engine: engine, Stats: aggregator, Uploader: s3Uploader}
	notificationHandler := &handlers.NotificationHandler{Store: st}
	statsHandler := &handlers.StatsHandler{Stats: aggregator}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === PUBLIC ROUTES ===

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Center discovery needs no account: the map and the center list are
		// the public face of the service.
		centers := apiV1.Group("/centers")
		{
			centers.GET("", centerHandler.ListCenters)
			centers.GET("/api", centerHandler.CentersAPI)
			centers.GET("/:id", centerHandler.GetCenter)
		}

		// === PROTECTED ROUTES ===

		authed := apiV1.Group("/")
		authed.Use(middleware.Authenticate())
		{
			me := authed.Group("/me")
			{
				me.GET("", profileHandler.GetMe)
				me.PUT("", profileHandler.UpdateMe)
				me.GET("/stats", profileHandler.GetMyStats)
			}

			notifications := authed.Group("/notifications")
			{
				notifications.GET("", notificationHandler.ListNotifications)
				notifications.POST("/:id/read", notificationHandler.MarkRead)
			}

			requests := authed.Group("/requests")
			{
				requests.POST("", requestHandler.CreateRequest)
				requests.GET("/my", requestHandler.MyRequests)
				requests.GET("/:id", requestHandler.GetRequest)
				requests.POST("/:id/cancel", requestHandler.Cancel)
				requests.POST("/:id/image", requestHandler.UploadRequestImage)

				// Staff actions. The engine re-checks center assignment per
				// request; the middleware only gates by role.
				staff := requests.Group("/")
				staff.Use(middleware.Authorize(models.RoleStaff, models.RoleAdmin))
				{
					staff.GET("/queue", requestHandler.StaffQueue)
					staff.POST("/bulk-action", requestHandler.BulkAction)
					staff.POST("/:id/approve", requestHandler.Approve)
					staff.POST("/:id/reject", requestHandler.Reject)
					staff.POST("/:id/start", requestHandler.Start)
					staff.POST("/:id/complete", requestHandler.Complete)
				}
			}

			staffStats := authed.Group("/stats")
			staffStats.Use(middleware.Authorize(models.RoleStaff, models.RoleAdmin))
			{
				staffStats.GET("/dashboard", statsHandler.Dashboard)
			}

			admin := authed.Group("/admin")
			admin.Use(middleware.Authorize(models.RoleAdmin))
			{
				admin.POST("/users", authHandler.CreateUser)

				adminCenters := admin.Group("/centers")
				{
					adminCenters.POST("", centerHandler.CreateCenter)
					adminCenters.PUT("/:id", centerHandler.UpdateCenter)
					adminCenters.DELETE("/:id", centerHandler.DeactivateCenter)
					adminCenters.POST("/:id/image", centerHandler.UploadCenterImage)
				}
			}
		}
	}

	return router
}
