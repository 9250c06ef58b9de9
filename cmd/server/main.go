package main

import (
	"github.com/microblog-app/microblog-back/internal/cache"
	"github.com/microblog-app/microblog-back/internal/config"
	"github.com/microblog-app/microblog-back/internal/database"
	"github.com/microblog-app/microblog-back/internal/logs"
	"github.com/microblog-app/microblog-back/internal/messaging"
	"github.com/microblog-app/microblog-back/internal/post"
	"github.com/microblog-app/microblog-back/internal/schema"
	"github.com/microblog-app/microblog-back/internal/server"
	"github.com/microblog-app/microblog-back/internal/storage"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logs.Fatal("Invalid configuration", err)
	}

	if err := database.Connect(cfg); err != nil {
		logs.Fatal("Database connection failed", err)
	}
	if err := schema.Migrate(database.DB); err != nil {
		logs.Fatal("Schema migration failed", err)
	}

	post.SetLimits(post.Limits{MaxTitle: cfg.PostTitleMax, MaxContent: cfg.PostContentMax})

	if cfg.RedisAddr != "" {
		if err := cache.InitRedis(cfg.RedisAddr, cfg.RedisPassword); err != nil {
			logs.LogJSON("WARN", "Redis unavailable, feed cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer cache.Close()
	}

	if cfg.NatsURL != "" {
		if err := messaging.InitNATS(cfg.NatsURL); err != nil {
			logs.LogJSON("WARN", "NATS unavailable, events disabled", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer messaging.Close()
	}

	if cfg.S3Enabled() {
		if err := storage.InitS3(cfg.AWSBucket, cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey); err != nil {
			logs.LogJSON("WARN", "S3 unavailable, avatar upload disabled", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	r := server.New(cfg)
	logs.LogJSON("INFO", "Server starting", map[string]interface{}{
		"port":   cfg.Port,
		"driver": cfg.DBDriver,
	})
	if err := r.Run(":" + cfg.Port); err != nil {
		logs.Fatal("Server stopped", err)
	}
}
