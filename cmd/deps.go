package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spigell/card-advisor/internal/ai"
	"github.com/spigell/card-advisor/internal/ai/gemini"
	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/filtering"
	"github.com/spigell/card-advisor/internal/logger"
	"github.com/spigell/card-advisor/internal/notify"
	"github.com/spigell/card-advisor/internal/recommend"
	"github.com/spigell/card-advisor/internal/secrets"
	"github.com/spigell/card-advisor/internal/session"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// setup builds the logger and reads the config. It exits on failure.
func setup() (*zap.Logger, *Config) {
	log.SetFlags(0)

	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	l.Debug("starting the card-advisor", zap.String("version", version))
	return l, config
}

func loadCatalog(config *Config) (*catalog.Catalog, error) {
	if path := strings.TrimSpace(config.CatalogFile); path != "" {
		return catalog.LoadFile(path)
	}
	return catalog.Default()
}

func newEngine(config *Config, limit int, l *zap.Logger) (*recommend.Engine, *catalog.Catalog, error) {
	c, err := loadCatalog(config)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog: %w", err)
	}

	opts := []recommend.Option{recommend.WithLogger(l)}

	if limit <= 0 {
		limit = config.Limit
	}
	if limit > 0 {
		opts = append(opts, recommend.WithLimit(limit))
	}

	if ex := config.Exclude; ex != nil && (len(ex.Cards) > 0 || len(ex.Issuers) > 0) {
		opts = append(opts, recommend.WithFilters(filtering.NewExclude(ex.Cards, ex.Issuers)))
	}

	engine := recommend.New(c, opts...)

	if config.Filters != nil {
		for _, name := range config.Filters.Disable {
			if err := engine.DisableFilter(strings.TrimSpace(name), "disabled in config"); err != nil {
				return nil, nil, err
			}
		}
	}

	for _, status := range engine.FilterStatus() {
		l.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	return engine, c, nil
}

func newSessionStore(config *Config, l *zap.Logger) (session.Store, error) {
	cfg := config.Session
	if cfg == nil || strings.EqualFold(cfg.Backend, "memory") || cfg.Backend == "" {
		return session.NewMemory(l), nil
	}

	if !strings.EqualFold(cfg.Backend, "redis") {
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Backend)
	}
	if cfg.Redis == nil || strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("session.redis.addr is required for the redis backend")
	}

	password, err := secrets.Load(secrets.Source{
		Name: "redis password",
		File: cfg.Redis.PasswordFile,
		Env:  "REDIS_PASSWORD",
	})
	if err != nil && !errors.Is(err, secrets.ErrNotConfigured) {
		return nil, err
	}

	client := session.NewRedisClient(cfg.Redis.Addr, password, cfg.Redis.DB)
	return session.NewRedis(client, cfg.TTL, l), nil
}

func newNotifier(config *Config, l *zap.Logger) (*notify.Client, error) {
	var cfg TwilioConfig
	if config.Notify != nil && config.Notify.Twilio != nil {
		cfg = *config.Notify.Twilio
	}

	token, err := secrets.Load(secrets.Source{
		Name: "twilio auth token",
		File: cfg.AuthTokenFile,
		Env:  "TWILIO_AUTH_TOKEN",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set notify.twilio.auth-token-file or TWILIO_AUTH_TOKEN)", err)
	}

	client := notify.New(l.With(zap.String(logger.FieldChannel, "whatsapp")), cfg.AccountSID, token, cfg.From)
	if !client.Configured() {
		return nil, notify.ErrNotConfigured
	}
	return client, nil
}

// newNarrator returns the template narrator unless Gemini is enabled and
// configured. The Gemini narrator falls back to the template on errors.
func newNarrator(ctx context.Context, config *Config, l *zap.Logger) ai.Narrator {
	cfg := config.AI
	if cfg == nil || !cfg.Enabled {
		return ai.TemplateNarrator{}
	}

	narrator, err := newGeminiNarrator(ctx, cfg, l)
	if err != nil {
		l.Warn("using template narration", zap.Error(err))
		return ai.TemplateNarrator{}
	}

	return ai.WithFallback(narrator, l)
}

func newGeminiNarrator(ctx context.Context, cfg *AIConfig, l *zap.Logger) (ai.Narrator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithAI(l, "gemini", cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewNarrator(generator, l, cfg.Gemini.MaxLogLength), nil
}
