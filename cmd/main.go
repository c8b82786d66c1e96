package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/api/router"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/outbox"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/tracing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/spf13/pflag"

	appCoreLogger "resume-parser-go/internal/logger"

	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
)

var (
	version     = "1.0.0"            //nolint:gochecknoglobals
	serviceName = "resume-parser-go" //nolint:gochecknoglobals
)

func main() {
	initLogger()

	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}
	applyLogLevel(cfg.Logger.Level)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化链路追踪，未启用时返回空操作的shutdown
	shutdownTracing, err := tracing.InitTracerProvider(ctx, serviceName, version, cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}
	defer func() {
		flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFlush()
		if err := shutdownTracing(flushCtx); err != nil {
			glog.Warnf("关闭链路追踪失败: %v", err)
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	// 启动消息中继，把outbox表里的事件投递到RabbitMQ
	messageRelay := outbox.NewMessageRelay(storageManager.MySQL.DB(), storageManager.RabbitMQ)
	messageRelay.Start()
	glog.Info("消息中继服务已启动")

	// 简历处理服务：文本提取器和结构化解析器按配置在内部装配
	resumeService, err := processor.NewResumeService(cfg, storageManager, &appCoreLogger.Logger)
	if err != nil {
		glog.Fatalf("初始化简历处理服务失败: %v", err)
	}
	glog.Info("简历处理服务初始化成功")

	resumeHandler := handler.NewResumeHandler(cfg, storageManager, resumeService)
	queryHandler := handler.NewResumeQueryHandler(cfg, storageManager)

	go func() {
		uploadPrefetch := consumerPrefetch(cfg, "upload_consumer_workers", 10)
		uploadTimeout := config.GetDuration(cfg.RabbitMQ.BatchTimeouts["upload_process_timeout"], 2*time.Minute)
		glog.Infof("启动上传消费者，预取数: %d, 单条超时: %s", uploadPrefetch, uploadTimeout)
		if err := resumeHandler.StartResumeUploadConsumer(ctx, uploadPrefetch, uploadTimeout); err != nil {
			glog.Fatalf("启动上传消费者失败: %v", err)
		}

		parsePrefetch := consumerPrefetch(cfg, "parse_consumer_workers", 5)
		parseTimeout := config.GetDuration(cfg.RabbitMQ.BatchTimeouts["parse_process_timeout"], time.Minute)
		glog.Infof("启动解析消费者，预取数: %d, 单条超时: %s", parsePrefetch, parseTimeout)
		if err := resumeHandler.StartResumeParseConsumer(ctx, parsePrefetch, parseTimeout); err != nil {
			glog.Fatalf("启动解析消费者失败: %v", err)
		}

		go resumeHandler.StartMD5CleanupTask(ctx)
		glog.Info("所有消费者已启动")
	}()

	// HTTP服务器，请求经由obs-opentelemetry中间件接入链路追踪
	tracer, tracingCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(hertztracing.ServerMiddleware(tracingCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, cfg, resumeHandler, queryHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	// 先停消息中继，避免向正在关闭的连接投递
	messageRelay.Stop()
	glog.Info("消息中继服务已停止")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// consumerPrefetch 从consumer_workers配置读取预取数，
// 没有按消费者配置时退回全局prefetch_count
func consumerPrefetch(cfg *config.Config, key string, fallback int) int {
	if workers, ok := cfg.RabbitMQ.ConsumerWorkers[key]; ok && workers > 0 {
		return workers
	}
	if cfg.RabbitMQ.PrefetchCount > 0 {
		return cfg.RabbitMQ.PrefetchCount
	}
	return fallback
}

func initLogger() {
	logFilePath := "logs/app.log"
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Fatalf("创建日志目录失败: %v", err)
	}
	fileWriter, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("无法打开日志文件 %s: %v", logFilePath, err)
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}
	multiWriter := zerolog.MultiLevelWriter(consoleWriter, fileWriter)

	// 配置还没加载，先用info级别，之后由applyLogLevel调整
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimeFieldFormat = "15:04:05"

	logger := zerolog.New(multiWriter).With().Timestamp().Caller().Logger()

	// 同时作为应用日志和zerolog全局日志
	appCoreLogger.Logger = logger
	zlog.Logger = logger

	// Hertz框架日志走同一个zerolog实例
	hertzCompatibleLogger := hertzadapter.From(appCoreLogger.Logger)
	glog.SetLogger(hertzCompatibleLogger)
	glog.SetLevel(glog.LevelInfo)
}

// applyLogLevel 按配置调整zerolog与Hertz的日志级别
func applyLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return
	}
	zerolog.SetGlobalLevel(parsed)

	switch parsed {
	case zerolog.DebugLevel:
		glog.SetLevel(glog.LevelDebug)
	case zerolog.InfoLevel:
		glog.SetLevel(glog.LevelInfo)
	case zerolog.WarnLevel:
		glog.SetLevel(glog.LevelWarn)
	case zerolog.ErrorLevel:
		glog.SetLevel(glog.LevelError)
	}
}
