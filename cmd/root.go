package cmd

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spigell/card-advisor/internal/profile"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "card-advisor"
	envPrefix = "CARD_ADVISOR"
)

type Config struct {
	CatalogFile string            `mapstructure:"catalog-file"`
	Limit       int               `mapstructure:"limit"`
	Defaults    *profile.Defaults `mapstructure:"defaults"`
	Exclude     *ExcludeConfig    `mapstructure:"exclude"`
	Filters     *FiltersConfig    `mapstructure:"filters"`
	Session     *SessionConfig    `mapstructure:"session"`
	Notify      *NotifyConfig     `mapstructure:"notify"`
	AI          *AIConfig         `mapstructure:"ai"`
}

type ExcludeConfig struct {
	Cards   []string `mapstructure:"cards"`
	Issuers []string `mapstructure:"issuers"`
}

type FiltersConfig struct {
	// Disable lists filter names to skip, e.g. credit_score.
	Disable []string `mapstructure:"disable"`
}

type SessionConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   *RedisConfig  `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	PasswordFile string `mapstructure:"password-file"`
	DB           int    `mapstructure:"db"`
}

type NotifyConfig struct {
	Twilio *TwilioConfig `mapstructure:"twilio"`
}

type TwilioConfig struct {
	AccountSID    string `mapstructure:"account-sid"`
	AuthTokenFile string `mapstructure:"auth-token-file"`
	From          string `mapstructure:"from"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "card-advisor recommends Indian credit cards from a spending profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is card-advisor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setConfigDefaults()
}

func setConfigDefaults() {
	d := profile.DefaultDefaults()
	viper.SetDefault("defaults.monthly-income", d.MonthlyIncome)
	viper.SetDefault("defaults.spending", d.Spending)
	viper.SetDefault("defaults.preferred-benefits", d.PreferredBenefits)
	viper.SetDefault("defaults.credit-score", d.CreditScore)
	viper.SetDefault("session.backend", "memory")
	viper.SetDefault("session.ttl", 24*time.Hour)
	viper.SetDefault("ai.provider", "gemini")
}

func initConfig() {
	// A missing .env file is fine, a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)

	// The config file is optional when no path was given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Defaults == nil {
		d := profile.DefaultDefaults()
		config.Defaults = &d
	}

	return config, nil
}
