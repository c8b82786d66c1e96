package router

import (
	"context"
	"errors"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/pkg/ratelimit"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// RegisterRoutes 注册API路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config, resumeHandler *handler.ResumeHandler, queryHandler *handler.ResumeQueryHandler) {
	// 健康检查不走鉴权，方便负载均衡探活
	h.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api := h.Group("/api/v1")
	if cfg.Auth.Enabled {
		api.Use(buildAPIKeyAuth(cfg))
	}

	// 上传接口单独限流，读接口有缓存兜底不限
	var uploadLimiter *ratelimit.TokenBucket
	if cfg.Server.UploadRateLimitQPM > 0 {
		uploadLimiter = ratelimit.NewTokenBucket(cfg.Server.UploadRateLimitQPM, cfg.Server.UploadRateBurst)
	}

	api.POST("/resumes/upload", func(c context.Context, ctx *app.RequestContext) {
		if uploadLimiter != nil && !uploadLimiter.Allow() {
			ctx.JSON(consts.StatusTooManyRequests, utils.H{"error": "上传过于频繁，请稍后重试"})
			return
		}

		// 获取上传的文件
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		// 获取来源渠道
		sourceChannel := ctx.PostForm("source_channel")
		if sourceChannel == "" {
			sourceChannel = "web_upload" // 默认值
		}

		// 打开文件
		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		// 处理上传
		resp, err := resumeHandler.HandleResumeUpload(
			c,
			file,
			fileHeader.Size,
			fileHeader.Filename,
			sourceChannel,
		)
		if err != nil {
			if errors.Is(err, handler.ErrUnsupportedFileType) {
				ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}

		// 新提交受理即返回，解析异步完成；重复文件返回已有提交
		if resp.Status == constants.StatusUploaded {
			ctx.JSON(consts.StatusAccepted, resp)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/resumes/search", queryHandler.HandleSearch)
	api.GET("/resumes", queryHandler.HandleList)
	api.GET("/resumes/:uuid", queryHandler.HandleGetRecord)
	api.GET("/resumes/:uuid/status", queryHandler.HandleGetStatus)
}

// buildAPIKeyAuth 构造Bearer token鉴权中间件，key白名单来自配置
func buildAPIKeyAuth(cfg *config.Config) app.HandlerFunc {
	keys := make(map[string]struct{}, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		keys[k] = struct{}{}
	}

	return keyauth.New(
		keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
			_, ok := keys[key]
			return ok, nil
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			c.JSON(consts.StatusUnauthorized, utils.H{"error": "未授权的访问"})
			c.Abort()
		}),
	)
}
