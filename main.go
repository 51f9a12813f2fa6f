package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"tax-agent/config"
	httpLayer "tax-agent/http"
	"tax-agent/repository"
	"tax-agent/service"
)

var (
	configPath = flag.String("config", "", "config file path (empty means built-in defaults)")

	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "log level (trace debug info warn error critical off)")

	log = logrus.WithField("module", "main")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.0000",
	})
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Fatalf("log.level must be one of %v", logLevels)
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
	log.Info("server exited")
}

// run wires the service and blocks until shutdown. Returning instead of
// exiting lets the deferred cleanups close Redis, Mongo and the limiter.
func run() error {
	c, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("config load err: %w", err)
	}
	log.Infof("%+v", c.Redacted())

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	rateLimiter := httpLayer.NewRateLimiter(c.RateLimit.Capacity, c.RateLimit.Refill)
	defer rateLimiter.Stop()

	var cache repository.CacheRepository
	if c.Redis.Addr != "" {
		redisCache := repository.NewRedisCache(c.Redis.Addr, c.Redis.Password, c.Redis.DB, c.Redis.TTL)
		defer redisCache.Close()
		if err := redisCache.Ping(startCtx); err != nil {
			return fmt.Errorf("redis %s unreachable: %w", c.Redis.Addr, err)
		}
		cache = redisCache
		log.Infof("caching results in redis at %s", c.Redis.Addr)
	} else {
		cache = repository.NewMockCache()
	}

	var calcRepo repository.CalculationRepository
	if c.Mongo.URI != "" {
		mongoRepo, err := repository.NewCalculationRepositoryMongo(startCtx, c.Mongo.URI, c.Mongo.DB, c.Mongo.Col)
		if err != nil {
			return fmt.Errorf("mongo history store: %w", err)
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				log.Warnf("error disconnecting mongo: %v", err)
			}
		}()
		calcRepo = mongoRepo
		log.Infof("recording history in %s.%s", c.Mongo.DB, c.Mongo.Col)
	} else {
		calcRepo = repository.NewCalculationRepositoryMemory(c.HistoryMemory)
	}

	advisor := service.NewAdvisorService(
		os.Getenv("OPENAI_API_KEY"),
		c.Advisor.URL,
		c.Advisor.Model,
		c.Advisor.Timeout,
	)

	taxService := service.NewTaxService(calcRepo, cache, advisor)
	taxHandler := httpLayer.NewTaxHandler(taxService)

	gstService := service.NewGSTService()
	gstHandler := httpLayer.NewGSTHandler(gstService)

	server := &http.Server{
		Addr:         c.Server.Addr,
		Handler:      httpLayer.NewRouter(taxHandler, gstHandler, rateLimiter),
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
		IdleTimeout:  c.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("API listening on %s", c.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("error starting server: %w", err)
	case <-quit:
		log.Info("shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	return nil
}
