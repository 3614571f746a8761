package controller

import (
	"edumind_backend/internal/service"
	"edumind_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB      *gorm.DB
	Content *service.ContentService
	Breaker *service.Breaker
}

func NewHealthController(db *gorm.DB, content *service.ContentService, breaker *service.Breaker) *HealthController {
	return &HealthController{
		DB:      db,
		Content: content,
		Breaker: breaker,
	}
}

// @Summary 健康检查
// @Description 检查数据库连接、内容索引与生成服务熔断状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database":  "up",
			"index":     gin.H{"documents": c.Content.Index().Len()},
			"generator": c.Breaker.State().String(),
		},
	})
}
