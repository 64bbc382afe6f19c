// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"legal-nav-go/internal/config"
	"legal-nav-go/internal/handler"
	"legal-nav-go/internal/middleware"
	"legal-nav-go/internal/model"
	"legal-nav-go/internal/pipeline"
	"legal-nav-go/internal/repository"
	"legal-nav-go/internal/service"
	"legal-nav-go/pkg/database"
	"legal-nav-go/pkg/embedding"
	"legal-nav-go/pkg/es"
	"legal-nav-go/pkg/kafka"
	"legal-nav-go/pkg/llm"
	"legal-nav-go/pkg/log"
	"legal-nav-go/pkg/storage"
	"legal-nav-go/pkg/tasks"
	"legal-nav-go/pkg/tika"
	"legal-nav-go/pkg/token"
	"legal-nav-go/pkg/vectorstore"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、缓存、对象存储与向量索引
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
		log.Fatalf("es 初始化失败: %v", err)
	}
	kafka.InitProducer(cfg.Kafka)

	// 数据库表结构迁移
	if err := database.DB.AutoMigrate(&model.DocumentChunk{}, &model.DocumentUpload{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	// 4. 初始化 Repository
	chunkRepo := repository.NewChunkRepository(database.DB)
	uploadRepo := repository.NewUploadRepository(database.DB)
	cacheRepo := repository.NewAnswerCacheRepository(database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpireHours)
	tikaClient := tika.NewClient(cfg.Tika)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)
	store := vectorstore.NewStore(es.ESClient, cfg.Elasticsearch.IndexName)

	loader := pipeline.NewLoader(tikaClient)
	processor := pipeline.NewProcessor(loader, embeddingClient, store, chunkRepo, uploadRepo, cfg.Ingest, cfg.Embedding.Model)

	generator := service.NewAnswerGenerator(llmClient, cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	queryService := service.NewQueryService(embeddingClient, store, generator, cacheRepo, cfg.Retrieval)
	ingestService := service.NewIngestService(processor, uploadRepo, cacheRepo, cfg.Ingest, cfg.MinIO.BucketName)
	documentService := service.NewDocumentService(store, chunkRepo, uploadRepo, cacheRepo, cfg.Elasticsearch, cfg.MinIO, cfg.Server.Version)
	chatService := service.NewChatService(embeddingClient, store, llmClient, cfg.Retrieval)
	authService := service.NewAuthService(jwtManager, cfg.Auth)

	// 6. 启动后台 Kafka 消费者处理种子导入任务
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 6.1 扫描种子目录并投递导入任务（已导入的文件跳过）
	if cfg.Seed.Dir != "" {
		go seedDirectory(cfg.Seed.Dir, cfg.Ingest.AllowedExtensions, uploadRepo)
	}

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	documentHandler := handler.NewDocumentHandler(documentService, cfg.Server.Version)
	queryHandler := handler.NewQueryHandler(queryService)
	uploadHandler := handler.NewUploadHandler(ingestService)
	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)

	r.GET("/", documentHandler.Root)

	api := r.Group("/api")
	{
		api.GET("/health", documentHandler.Health)
		api.GET("/stats", documentHandler.Stats)
		api.POST("/query", queryHandler.Query)
		api.POST("/search", queryHandler.Search)
		api.POST("/upload", uploadHandler.Upload)

		api.POST("/auth/token", authHandler.IssueToken)

		api.GET("/documents/:filename", documentHandler.GetChunks)
		api.GET("/documents/:filename/download", documentHandler.Download)

		// 破坏性操作需要服务令牌
		authed := api.Group("/", middleware.ServiceAuth(jwtManager))
		{
			authed.DELETE("/documents", documentHandler.ClearAll)
		}

		api.GET("/chat", chatHandler.Handle)
	}

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}

// seedDirectory 扫描种子目录并通过 Kafka 投递导入任务（按 MD5 幂等）。
func seedDirectory(dir string, allowedExts []string, uploadRepo repository.UploadRepository) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Infof("seedDirectory: 目录 '%s' 不存在或不可用，跳过初始化导入", dir)
		return
	}

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(info.Name()))
		allowed := false
		for _, a := range allowedExts {
			if ext == strings.ToLower(a) {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil
		}

		fileMD5, err := pipeline.FileMD5(path)
		if err != nil {
			log.Warnf("seedDirectory: 计算 MD5 失败: %s, err=%v", path, err)
			return nil
		}

		// 幂等检查：已成功导入的文件跳过
		if upload, ferr := uploadRepo.FindByMD5(fileMD5); ferr == nil && upload != nil && upload.Status == model.UploadStatusCompleted {
			log.Infof("seedDirectory: 已存在，跳过: %s (md5=%s)", info.Name(), fileMD5)
			return nil
		}

		task := tasks.IngestTask{
			FileMD5:  fileMD5,
			FileName: info.Name(),
			Path:     path,
		}
		if err := kafka.ProduceIngestTask(task); err != nil {
			log.Warnf("seedDirectory: 投递导入任务失败: %s, err=%v", path, err)
			return nil
		}
		log.Infof("seedDirectory: 已投递导入任务: %s", info.Name())
		return nil
	})
	if walkErr != nil {
		log.Warnf("seedDirectory: 遍历目录发生错误: %v", walkErr)
	}
}
