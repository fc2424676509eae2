// Package app wires every endpoint to its handler and builds the dependencies
// they share
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leetgym/api/app/auth"
	"leetgym/api/app/chat"
	"leetgym/api/app/logs"
	"leetgym/api/app/problem"
	"leetgym/api/app/root"
	"leetgym/api/app/settings"
	"leetgym/api/aws"
	"leetgym/api/db"
	"leetgym/api/internal"
	"leetgym/api/internal/quota"
	"leetgym/api/internal/service"
	"leetgym/api/pkg/middleware"
	"leetgym/api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"

	maxBodySize = 1 << 20
)

// Options are the engine settings that don't live in Deps
type Options struct {
	CORSOrigins []string
	RateLimit   int
	Development bool
}

// NewRouter builds the dependencies from the loaded config and returns the
// engine serving them
func NewRouter(ctx context.Context) (*gin.Engine, *internal.Deps, error) {
	makeLogger(viper.GetString("app.log_level"))

	d, err := NewDeps(ctx)
	if err != nil {
		return nil, nil, err
	}

	r := NewEngine(d, Options{
		CORSOrigins: strings.Split(viper.GetString("host.cors"), ","),
		RateLimit:   viper.GetInt("security.rate_limit"),
		Development: viper.GetBool("app.development"),
	})

	return r, d, nil
}

func NewDeps(ctx context.Context) (*internal.Deps, error) {
	database, err := db.New(viper.GetString("db.driver"), viper.GetString("db.dsn"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	d := &internal.Deps{
		DB:    database,
		Argon: security.New(),
		Tokens: security.NewTokenIssuer(
			viper.GetString("jwt.secret"),
			viper.GetString("jwt.issuer"),
			viper.GetString("jwt.audience"),
		),
		LLM: service.NewLLM(service.LLMConfig{
			BaseURL:     viper.GetString("llm.base_url"),
			APIKey:      viper.GetString("llm.api_key"),
			Model:       viper.GetString("llm.model"),
			MaxTokens:   viper.GetInt("llm.max_tokens"),
			Temperature: float32(viper.GetFloat64("llm.temperature")),
		}),
		Problems:  service.NewProblemClient(viper.GetString("problem.endpoint")),
		PublicURL: viper.GetString("app.public_url"),
	}

	var store quota.Store
	if addr := viper.GetString("redis.addr"); addr != "" {
		d.Redis = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		})

		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis, %w", err)
		}

		store = quota.NewRedisStore(d.Redis)
	} else {
		zap.L().Warn("No redis.addr set, usage quotas are kept in memory and reset on restart")
		store = quota.NewMemoryStore()
	}

	d.Quota = quota.NewLimiter(store, viper.GetInt64("quota.limit"), viper.GetDuration("quota.window"))

	if bucket := viper.GetString("aws.bucket"); bucket != "" {
		s3, err := aws.NewS3(ctx, aws.S3Options{
			AccessKeyID:     viper.GetString("aws.access_key_id"),
			SecretAccessKey: viper.GetString("aws.secret_access_key"),
			Region:          viper.GetString("aws.region"),
			Bucket:          bucket,
			Endpoint:        viper.GetString("aws.endpoint"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		d.Exporter = service.NewExporter(s3)
	}

	return d, nil
}

// NewEngine registers every route against d
func NewEngine(d *internal.Deps, o Options) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(corsConfig(o.CORSOrigins)),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		middleware.NewSecureMiddleware(o.Development),
		middleware.NewMetricsMiddleware(),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	jwt := middleware.NewJWTMiddleware(d.Tokens)
	optionalJWT := middleware.NewOptionalJWTMiddleware(d.Tokens)
	bodyLimit := middleware.BodySizeLimiter(maxBodySize)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: o.RateLimit,
		Burst:             o.RateLimit * 2,
		CleanupInterval:   time.Minute,
	})

	// GET /metrics			-> Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/health		-> Reports whether the database and redis are reachable
		m.GET("/health", func(c *gin.Context) { root.Health(c, d) })

		// GET /api/problem/:slug	-> Returns problem metadata, cached for 10 minutes
		m.GET("/problem/:slug", cacheFor(10*time.Minute), func(c *gin.Context) { problem.Fetch(c, d) })
	}

	a := m.Group("/auth", bodyLimit)
	{
		// POST /api/auth		-> Logs in or signs up depending on the type field
		a.POST("", func(c *gin.Context) { auth.Auth(c, d) })

		// POST /api/auth/forgot-password	-> Issues a one hour reset link
		a.POST("/forgot-password", func(c *gin.Context) { auth.ForgotPassword(c, d) })

		// POST /api/auth/reset-password	-> Redeems a reset link
		a.POST("/reset-password", func(c *gin.Context) { auth.ResetPassword(c, d) })

		// PATCH /api/auth/password	-> Changes the password of a signed in user
		a.PATCH("/password", jwt, func(c *gin.Context) { auth.ChangePassword(c, d) })
	}

	l := m.Group("/log", jwt, bodyLimit)
	{
		// POST /api/log		-> Records a practice session
		l.POST("", func(c *gin.Context) { logs.Create(c, d) })

		// GET /api/log			-> Lists the user's logs, soonest review first
		l.GET("", func(c *gin.Context) { logs.List(c, d) })

		// POST /api/log/export		-> Exports every log the user owns
		l.POST("/export", func(c *gin.Context) { logs.Export(c, d) })

		// GET /api/log/:id		-> Returns a single log owned by the user
		l.GET("/:id", func(c *gin.Context) { logs.Fetch(c, d) })
	}

	s := m.Group("/settings", jwt, bodyLimit)
	{
		// GET /api/settings		-> Returns the user's preferences
		s.GET("", func(c *gin.Context) { settings.Fetch(c, d) })

		// PATCH /api/settings		-> Updates the fields present in the body
		s.PATCH("", func(c *gin.Context) { settings.Update(c, d) })
	}

	// POST /api/chat			-> Streams a coaching reply, spends the free quota without a personal key
	m.POST("/chat", optionalJWT, bodyLimit, func(c *gin.Context) { chat.Chat(c, d) })

	// POST /api/generate-notes		-> Summarizes a conversation into revision notes
	m.POST("/generate-notes", bodyLimit, func(c *gin.Context) { chat.GenerateNotes(c, d) })

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:           []string{"GET", "POST", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders:           []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:          []string{"Content-Length", "X-Request-ID"},
		AllowBrowserExtensions: true,
		MaxAge:                 12 * time.Hour,
	}

	cleaned := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}

	if len(cleaned) == 0 || (len(cleaned) == 1 && cleaned[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = cleaned
	cfg.AllowCredentials = true
	return cfg
}

// makeLogger installs the global zap logger at the given level
func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

var store = persist.NewMemoryStore(time.Minute)

func cacheFor(t time.Duration) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, t)
}
