package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stustanet/sprechstundensystem-ng/config"
	"github.com/stustanet/sprechstundensystem-ng/internal/api/handler"
	"github.com/stustanet/sprechstundensystem-ng/internal/api/middleware"
	"github.com/stustanet/sprechstundensystem-ng/pkg/jwt"
	"github.com/stustanet/sprechstundensystem-ng/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── 公开资源（无信封，供外部集成） ──
	r.GET("/persons.json", h.Admin.ListPersons)
	r.GET("/appointments.json", h.Appointment.ListUpcoming)
	r.GET("/calendar/all.ics", h.Appointment.AllCalendar)
	r.GET("/calendar/admins/:id", h.Admin.AdminCalendar)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 排班视图：公开，但登录与否行为不同
		v1.GET("/plan", middleware.OptionalAuth(jwtMgr, rdb), h.Appointment.Plan)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 管理员档案模块
			admins := authorized.Group("/admins")
			{
				admins.GET("", h.Admin.ListAdmins)
				admins.GET("/statistics", h.Admin.Statistics)
				admins.GET("/statistics/export", h.Admin.ExportStatistics)
				admins.GET("/:id", h.Admin.GetAdmin)
				admins.POST("", h.Admin.CreateAdmin)
				admins.PUT("/:id", h.Admin.UpdateAdmin)
				admins.DELETE("/:id", h.Admin.DeleteAdmin)
			}

			// 值班时段模块
			appointments := authorized.Group("/appointments")
			{
				appointments.GET("/drafts", h.Appointment.Drafts)
				appointments.GET("/:id", h.Appointment.GetAppointment)
				appointments.POST("", h.Appointment.CreateAppointments)
				appointments.PUT("/:id", h.Appointment.UpdateAppointment)
				appointments.DELETE("/:id", h.Appointment.DeleteAppointment)
			}

			// 运行时配置模块
			settings := authorized.Group("/settings")
			{
				settings.GET("", h.Setting.ListSettings)
				settings.POST("/:key/variants", h.Setting.AddVariant)
				settings.PUT("/:key/variants", h.Setting.SaveVariants)
				settings.DELETE("/:key/variants/:id", h.Setting.DeleteVariant)
			}
		}
	}

	return r
}
