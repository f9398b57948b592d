// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"rag-system-go/internal/config"
	"rag-system-go/internal/handler"
	"rag-system-go/internal/middleware"
	"rag-system-go/internal/model"
	"rag-system-go/internal/pipeline"
	"rag-system-go/internal/repository"
	"rag-system-go/internal/service"
	"rag-system-go/pkg/database"
	"rag-system-go/pkg/embedding"
	"rag-system-go/pkg/es"
	"rag-system-go/pkg/kafka"
	"rag-system-go/pkg/llm"
	"rag-system-go/pkg/log"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("./configs/config.yaml")
	if err != nil {
		panic(err)
	}

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化必需的协作方：文档目录库与向量库。二者任一失败即终止启动。
	db, err := database.NewMySQL(cfg.Database.MySQL.DSN)
	if err != nil {
		log.Fatal("文档目录库初始化失败", err)
	}
	if err := db.AutoMigrate(&model.Document{}); err != nil {
		log.Fatal("文档目录表迁移失败", err)
	}

	store, err := es.NewStore(cfg.Elasticsearch, cfg.Embedding.Dimensions)
	if err != nil {
		log.Fatal("向量库初始化失败", err)
	}

	// 4. 可选协作方：问答缓存与文档事件。失败或未配置时禁用，不阻塞启动。
	var rdb *redis.Client
	if cfg.RAG.CacheEnabled && cfg.Database.Redis.Addr != "" {
		rdb, err = database.NewRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		if err != nil {
			log.Warnf("问答缓存初始化失败, 缓存已禁用: %v", err)
			rdb = nil
		}
	}
	producer := kafka.NewProducer(cfg.Kafka)
	defer producer.Close()

	// 5. 模型客户端：real 与 stub 的选择由配置显式决定
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)
	evalLLM := llm.NewClient(config.LLMConfig{
		Provider: cfg.Evaluation.Provider,
		APIKey:   cfg.Evaluation.APIKey,
		BaseURL:  cfg.Evaluation.BaseURL,
		Model:    cfg.Evaluation.Model,
	})
	evalEmbeddings := embedding.NewClient(config.EmbeddingConfig{
		Provider:   cfg.Evaluation.Provider,
		APIKey:     cfg.Evaluation.APIKey,
		BaseURL:    cfg.Evaluation.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	})

	// 6. 组装 Repository、Pipeline 与 Service (依赖注入)
	docRepo := repository.NewDocumentRepository(db)
	var queryCache repository.QueryCacheRepository
	if rdb != nil {
		queryCache = repository.NewQueryCacheRepository(rdb, time.Duration(cfg.RAG.CacheTTLMinutes)*time.Minute)
	}

	processor := pipeline.NewProcessor(embeddingClient, store, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	docService := service.NewDocumentService(processor, store, docRepo, producer)
	evalService := service.NewEvaluationService(evalLLM, evalEmbeddings, cfg.Evaluation.QuestionCount)
	queryService := service.NewQueryService(embeddingClient, store, llmClient, evalService, queryCache)

	// 7. 设置 Gin 并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/", handler.NewHealthHandler().Welcome)

	apiV1 := r.Group("/api/v1")
	{
		docHandler := handler.NewDocumentHandler(docService)
		documents := apiV1.Group("/documents")
		{
			documents.POST("/upload", docHandler.Upload)
			documents.GET("/", docHandler.List)
			documents.GET("/:documentId", docHandler.Get)
			documents.DELETE("/:documentId", docHandler.Delete)
		}

		ragHandler := handler.NewRagHandler(queryService)
		rag := apiV1.Group("/rag")
		{
			rag.POST("/query", ragHandler.Query)
		}
	}

	// 8. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s", err)
		}
	}()

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
