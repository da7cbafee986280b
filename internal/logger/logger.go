package logger

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
	Output string `yaml:"output" env:"LOG_OUTPUT" env-default:"stderr"`
}

func New(config *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(config.Level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	var zapCfg zap.Config
	switch config.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console", "":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q", config.Format)
	}

	output := config.Output
	if output == "" {
		output = "stderr"
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{output}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.DisableStacktrace = true

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return log, nil
}

// MiddlewareLogger logs every request served by a chi router. Requests are
// logged at debug level unless they fail.
func MiddlewareLogger(log *zap.Logger, config *Config) func(next http.Handler) http.Handler {
	log = log.With(zap.String("component", "middleware/logger"))
	log.Info("logger middleware enabled", zap.String("level", config.Level))

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("query", r.URL.RawQuery),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Duration("duration", time.Since(start)),
				}

				if ww.Status() >= http.StatusBadRequest {
					log.Warn("request completed with error", fields...)
					return
				}
				log.Debug("request completed", fields...)
			}()

			next.ServeHTTP(ww, r)
		}

		return http.HandlerFunc(fn)
	}
}
