package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "outfit-advisor"
)

type Config struct {
	Listen    string           `mapstructure:"listen"`
	Supabase  *SupabaseConfig  `mapstructure:"supabase"`
	Chat      *ChatConfig      `mapstructure:"chat"`
	Recommend *RecommendConfig `mapstructure:"recommend"`
	HTTP      *HTTPConfig      `mapstructure:"http"`
}

type SupabaseConfig struct {
	URL         string        `mapstructure:"url"`
	AnonKey     string        `mapstructure:"anon-key"`
	AnonKeyFile string        `mapstructure:"anon-key-file"`
	Bucket      string        `mapstructure:"bucket"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type ChatConfig struct {
	Provider     string        `mapstructure:"provider"`
	BaseURL      string        `mapstructure:"base-url"`
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	DefaultModel string        `mapstructure:"default-model"`
	Models       []string      `mapstructure:"models"`
	MaxRetries   int           `mapstructure:"max-retries"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type RecommendConfig struct {
	MaxSuggestions int `mapstructure:"max-suggestions"`
}

type HTTPConfig struct {
	CORSOrigins []string `mapstructure:"cors-origins"`
	RateLimit   int      `mapstructure:"rate-limit"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "outfit-advisor recommends clothing pairings for a photographed garment",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var envBindings = map[string]string{
	"listen":                 "LISTEN_ADDR",
	"supabase.url":           "SUPABASE_URL",
	"supabase.anon-key-file": "SUPABASE_ANON_KEY_FILE",
	"chat.provider":          "CHAT_PROVIDER",
	"chat.api-key-file":      "CHAT_API_KEY_FILE",
	"chat.default-model":     "CHAT_DEFAULT_MODEL",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is outfit-advisor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("listen", ":8080")
	viper.SetDefault("supabase.bucket", "image")
	viper.SetDefault("supabase.timeout", 30*time.Second)
	viper.SetDefault("chat.provider", "openai")
	viper.SetDefault("chat.default-model", "gpt-4o")
	viper.SetDefault("chat.max-retries", 5)
	viper.SetDefault("chat.max-log-length", 200)
	viper.SetDefault("chat.timeout", 60*time.Second)
	viper.SetDefault("recommend.max-suggestions", 3)
	viper.SetDefault("http.rate-limit", 20)
}

func initConfig() {
	// Only the serve and recommend commands need a config.
	if serveCmd.CalledAs() == "" && recommendCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// Without an explicit --config the file is optional: env and defaults are enough.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Supabase == nil {
		config.Supabase = &SupabaseConfig{}
	}
	if config.Chat == nil {
		config.Chat = &ChatConfig{}
	}
	if config.Recommend == nil {
		config.Recommend = &RecommendConfig{}
	}
	if config.HTTP == nil {
		config.HTTP = &HTTPConfig{}
	}

	return config, nil
}
