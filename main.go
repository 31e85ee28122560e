package main

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"tasktrack/ai"
	"tasktrack/api"
	"tasktrack/backend"
	"tasktrack/domain"
	"tasktrack/engine"
	"tasktrack/suggest"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		log.Fatal("missing backend config")
	}
	primaryURL := os.Getenv("AI_PRIMARY_URL")
	if primaryURL == "" {
		primaryURL = backendURL
	}
	offlineURL := os.Getenv("AI_OFFLINE_URL")
	if offlineURL == "" {
		offlineURL = "http://localhost:8000"
	}

	httpTimeout := envDur("HTTP_TIMEOUT", 10*time.Second)
	cacheTTL := envDur("ENHANCE_CACHE_TTL", 15*time.Minute)
	suggestDelay := envDur("SUGGEST_DELAY", time.Second)

	logger := log.New()

	store := backend.New(backendURL, httpTimeout)
	eng := engine.New(store, logger)

	var enhancer api.Enhancer = ai.NewClient(logger,
		ai.NewHTTPProvider(domain.ProvenancePrimary, primaryURL, httpTimeout),
		ai.NewHTTPProvider(domain.ProvenanceOffline, offlineURL, httpTimeout),
	)
	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		rc := redis.NewClient(redisOptions(redisConn))
		enhancer = ai.NewCache(enhancer, rc, cacheTTL)
	}

	generator := suggest.New(suggest.WithDelay(suggestDelay))

	// Warm the view before serving; a failed fetch only marks the state
	// stale, the next refresh intent retries.
	if err := eng.Refresh(context.Background()); err != nil {
		logger.WithField("error", err.Error()).Warn("initial refresh failed")
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	api.Register(e, eng, enhancer, generator, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("LISTEN_ADDR"); ok {
		listenAddr = val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

func redisOptions(connStr string) *redis.Options {
	opts, err := redis.ParseURL(connStr)
	if err == nil {
		return opts
	}
	parts := strings.Split(connStr, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}

func envDur(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Fatalf("invalid %s: %v", name, err)
	}
	return d
}
