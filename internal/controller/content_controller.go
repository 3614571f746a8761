package controller

import (
	"edumind_backend/internal/config"
	"edumind_backend/internal/service"
	"edumind_backend/internal/util"
	"edumind_backend/pkg/logger"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContentController struct {
	Content *service.ContentService
	Search  *service.SearchService
	Storage *service.StorageService
	Cfg     *config.Config
}

func NewContentController(content *service.ContentService, search *service.SearchService, storage *service.StorageService, cfg *config.Config) *ContentController {
	return &ContentController{
		Content: content,
		Search:  search,
		Storage: storage,
		Cfg:     cfg,
	}
}

// SearchContent godoc
// @Summary 内容检索
// @Description 在课程索引中按相关性检索，默认返回前 5 条
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   q query string true "检索词"
// @Param   limit query int false "返回条数上限"
// @Success 200 {object} util.Response{data=[]model.SearchResult}
// @Router /api/content/search [get]
func (c *ContentController) SearchContent(ctx *gin.Context) {
	query := ctx.Query("q")
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))

	results := c.Search.Search(query, limit)
	util.Success(ctx, results)
}

// ListCourses godoc
// @Summary 课程列表
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.CourseRecord}
// @Router /api/content/courses [get]
func (c *ContentController) ListCourses(ctx *gin.Context) {
	util.Success(ctx, c.Content.Index().Courses())
}

// GetCourse godoc
// @Summary 课程详情
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "课程 ID"
// @Success 200 {object} util.Response{data=model.CourseRecord}
// @Failure 404 {object} util.Response
// @Router /api/content/courses/{id} [get]
func (c *ContentController) GetCourse(ctx *gin.Context) {
	course, ok := c.Content.Index().Course(ctx.Param("id"))
	if !ok {
		util.NotFound(ctx, "课程不存在")
		return
	}
	util.Success(ctx, course)
}

// Reindex godoc
// @Summary 重建内容索引
// @Description 全量扫描内容库目录并原子替换索引，重建期间检索不受影响
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.IndexStats}
// @Router /api/content/reindex [post]
func (c *ContentController) Reindex(ctx *gin.Context) {
	stats, err := c.Content.Reindex(c.Cfg.Content.LibraryRoot)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// UploadMedia godoc
// @Summary 上传课程媒体文件
// @Description 校验扩展名后入库存储，视频文件附带探测到的元信息
// @Tags 内容
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "媒体文件"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/content/media/upload [post]
func (c *ContentController) UploadMedia(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少文件")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedVideoExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		util.BadRequest(ctx, util.ErrInvalidVideoExt.Error())
		return
	}

	// 扩展名可以伪造，再按文件头做一次深度校验
	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	mimeType, err := util.ValidateMimeType(src, []string{util.MimeVideo})
	src.Close()
	if err != nil {
		util.BadRequest(ctx, "文件内容不是有效的视频: "+mimeType)
		return
	}

	// 先落到临时文件，方便 ffprobe 读取元信息
	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("upload_%d%s", time.Now().UnixNano(), ext))
	if err := ctx.SaveUploadedFile(file, tmpPath); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer os.Remove(tmpPath)

	info, err := util.GetVideoInfo(tmpPath)
	if err != nil {
		util.BadRequest(ctx, "无法解析视频文件")
		return
	}

	mediaID := uuid.New().String()
	filename := fmt.Sprintf("media/%s%s", mediaID, ext)
	url, err := c.Storage.UploadFile(ctx.Request.Context(), filename, tmpPath, mimeType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	// 封面抓帧失败不阻断上传
	thumbnailURL := ""
	thumbPath := filepath.Join(os.TempDir(), fmt.Sprintf("thumb_%s.jpg", mediaID))
	if err := util.GenerateThumbnail(tmpPath, thumbPath, "00:00:01"); err != nil {
		logger.Log.Warn("生成视频封面失败", zap.String("filename", filename), zap.Error(err))
	} else {
		defer os.Remove(thumbPath)
		thumbName := fmt.Sprintf("media/%s_thumb.jpg", mediaID)
		thumbnailURL, err = c.Storage.UploadFile(ctx.Request.Context(), thumbName, thumbPath, "image/jpeg")
		if err != nil {
			logger.Log.Warn("上传视频封面失败", zap.String("filename", thumbName), zap.Error(err))
			thumbnailURL = ""
		}
	}

	util.Created(ctx, gin.H{
		"url":       url,
		"filename":  filename,
		"thumbnail": thumbnailURL,
		"video":     info,
	})
}
