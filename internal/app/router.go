package app

import (
	"edumind_backend/docs"
	"edumind_backend/internal/config"
	"edumind_backend/internal/middleware"
	"edumind_backend/internal/model"
	"edumind_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/me", c.auth.Me)

		authGroup.GET("/content/search", c.content.SearchContent)
		authGroup.GET("/content/courses", c.content.ListCourses)
		authGroup.GET("/content/courses/:id", c.content.GetCourse)

		assistant := authGroup.Group("/assistant")
		{
			assistant.POST("/ask", c.assistant.Ask)
			assistant.POST("/ask/stream", c.assistant.AskStream)
		}

		adaptiveTest := authGroup.Group("/adaptive-test")
		{
			adaptiveTest.POST("/generate", c.adaptiveTest.GenerateTest)
			adaptiveTest.POST("/submit", c.adaptiveTest.SubmitTest)
			adaptiveTest.POST("/roadmap", c.adaptiveTest.GenerateRoadmap)
			adaptiveTest.GET("/results", c.adaptiveTest.TestHistory)
			adaptiveTest.GET("/results/latest", c.adaptiveTest.LatestResult)
		}

		schedule := authGroup.Group("/schedule")
		{
			schedule.POST("/roadmap", c.schedule.OptimizeRoadmap)
			schedule.POST("/review", c.schedule.NextReview)
		}

		// 教师端内容管理
		teacher := authGroup.Group("/content")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.POST("/reindex", c.content.Reindex)
			teacher.POST("/media/upload", c.content.UploadMedia)
		}
	}
}
