package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	redis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/startzy/social-connect/connection"
	"github.com/startzy/social-connect/instagram"
	"github.com/startzy/social-connect/platform"
	"github.com/startzy/social-connect/youtube"
)

type appConfig struct {
	ListenAddr string `toml:"listen_addr"`

	Mongo struct {
		URI      string `toml:"uri"`
		Database string `toml:"database"`
	} `toml:"mongo"`

	// Redis is optional. When set, OAuth state tokens are opaque single-use
	// tokens stored in Redis; otherwise the raw user id travels as state.
	Redis struct {
		Addr     string `toml:"addr"`
		Password string `toml:"password"`
	} `toml:"redis"`

	Instagram instagram.Config `toml:"instagram"`
	YouTube   youtube.Config   `toml:"youtube"`
}

func main() {
	cfg := loadConfig(getEnv("CONFIG_PATH", "config.toml"))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	store := connection.NewMongoStore(client.Database(cfg.Mongo.Database))
	api := platform.NewClient()
	corr := initCorrelator(cfg)

	igService, err := instagram.NewService(cfg.Instagram, api, store)
	if err != nil {
		log.Fatalf("Failed to initialize Instagram service: %v", err)
	}
	ytService, err := youtube.NewService(cfg.YouTube, api, store)
	if err != nil {
		log.Fatalf("Failed to initialize YouTube service: %v", err)
	}

	// Instagram's long-lived token has no refresh exchange, so its
	// evaluator gets no refresher.
	igEval := connection.NewEvaluator(store, connection.PlatformInstagram, nil)
	ytEval := connection.NewEvaluator(store, connection.PlatformYouTube, ytService)

	mux := http.NewServeMux()
	instagram.NewServer(igService, igEval, corr).Register(mux)
	youtube.NewServer(ytService, ytEval, corr).Register(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	slog.Info("starting connectd", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, cors(mux)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadConfig(path string) *appConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file %s: %v", path, err)
	}

	var cfg appConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Failed to parse config file: %v", err)
	}

	// Secrets may come from the environment instead of the config file.
	overrideEnv(&cfg.Instagram.AppID, "INSTAGRAM_APP_ID")
	overrideEnv(&cfg.Instagram.AppSecret, "INSTAGRAM_APP_SECRET")
	overrideEnv(&cfg.YouTube.ClientID, "GOOGLE_CLIENT_ID")
	overrideEnv(&cfg.YouTube.ClientSecret, "GOOGLE_CLIENT_SECRET")
	overrideEnv(&cfg.Mongo.URI, "MONGO_URI")
	overrideEnv(&cfg.Redis.Addr, "REDIS_ADDR")

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":" + getEnv("PORT", "8080")
	}
	if cfg.Mongo.URI == "" {
		log.Fatal("mongo.uri is required")
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "startzy"
	}
	if err := cfg.Instagram.Validate(); err != nil {
		log.Fatalf("Invalid Instagram config: %v", err)
	}
	if err := cfg.YouTube.Validate(); err != nil {
		log.Fatalf("Invalid YouTube config: %v", err)
	}
	return &cfg
}

func initCorrelator(cfg *appConfig) connection.Correlator {
	if cfg.Redis.Addr == "" {
		slog.Info("no redis configured, using identity state tokens")
		return connection.IdentityCorrelator{}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	slog.Info("using redis-backed state tokens", "addr", cfg.Redis.Addr)
	return connection.NewRedisCorrelator(rdb, 10*time.Minute)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func overrideEnv(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}
