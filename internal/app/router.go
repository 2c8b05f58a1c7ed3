package app

import (
	"lingocode_backend/docs"
	"lingocode_backend/internal/middleware"
	"lingocode_backend/internal/model"
	"lingocode_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(a.authRequired)
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/profile", c.auth.GetProfile)
	api.GET("/profile/levels", c.progress.GetLevels)
	api.PUT("/profile/levels", c.progress.UpdateLevels)
	api.GET("/progress", c.progress.GetProgress)

	api.GET("/modules", c.lesson.ListModules)
	api.GET("/modules/:moduleId", c.lesson.GetModule)

	lessons := api.Group("/lessons/:moduleId/:lessonId")
	{
		lessons.GET("", c.lesson.GetLesson)
		lessons.POST("/run", a.runLimit, c.exercise.Run)
		lessons.GET("/state", c.exercise.State)
		lessons.POST("/help", a.runLimit, c.lesson.AskHelp)
	}

	playground := api.Group("/playground")
	{
		playground.POST("/run", a.runLimit, c.playground.Run)
		playground.GET("/templates", c.playground.Templates)
	}

	api.POST("/tutor/chat", a.runLimit, c.playground.Chat)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers) {
	admin := router.Group("/api/admin")
	admin.Use(a.authRequired, middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/lessons/export", c.admin.ExportLessons)

		admin.GET("/users", c.user.GetUsers)
		admin.GET("/users/:id", c.user.GetUser)
		admin.PUT("/users/:id/status", c.user.DisableUser)
		admin.POST("/users/:id/reset-password", c.user.ResetPassword)
	}
}
