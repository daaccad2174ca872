package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/api"
	"github.com/spigell/outfit-advisor/internal/logger"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the outfit-advisor HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the outfit-advisor", zap.String("version", version))
	logConfig(config, logger)

	backend, err := newBackend(config.Supabase, logger)
	if err != nil {
		logger.Fatal(
			"creating the backend client",
			zap.Error(err),
			zap.String("hint", "set SUPABASE_URL and SUPABASE_ANON_KEY_FILE or the 'supabase' section in the configuration file"),
		)
	}

	chatClient, err := newChatClient(ctx, config.Chat, logger)
	if err != nil {
		logger.Fatal(
			"creating the chat client",
			zap.Error(err),
			zap.String("hint", "set CHAT_API_KEY_FILE environment variable or the 'chat.api-key-file' key in the configuration file"),
		)
	}

	st := newStore(backend, config.Supabase, logger)
	recommender := newRecommender(st, chatClient, config, logger)

	handler := api.NewServer(api.Deps{
		Store:       st,
		Recommender: recommender,
		Images:      chatClient,
		Auth:        backend.Auth,
	}, api.Config{
		CORSOrigins: config.HTTP.CORSOrigins,
		RateLimit:   config.HTTP.RateLimit,
	}, logger)

	server := &http.Server{
		Addr:              config.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", config.Listen))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serving http", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "signal received"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutting down http server", zap.Error(err))
	}
}

// logConfig dumps the config at debug level with secrets masked.
func logConfig(config *Config, logger *zap.Logger) {
	masked := *config
	if config.Supabase != nil && config.Supabase.AnonKey != "" {
		supabaseCfg := *config.Supabase
		supabaseCfg.AnonKey = "***"
		masked.Supabase = &supabaseCfg
	}
	if config.Chat != nil && config.Chat.APIKey != "" {
		chatCfg := *config.Chat
		chatCfg.APIKey = "***"
		masked.Chat = &chatCfg
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(masked, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))
}
