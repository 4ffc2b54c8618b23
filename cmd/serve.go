package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matdash/matdash/internal/chat"
	"github.com/matdash/matdash/internal/config"
	"github.com/matdash/matdash/internal/db"
	"github.com/matdash/matdash/internal/files"
	"github.com/matdash/matdash/internal/metrics"
	"github.com/matdash/matdash/internal/server"
	"github.com/matdash/matdash/internal/status"
	"github.com/matdash/matdash/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard gateway",
	Long:  `Starts the matdash gateway: the dashboard UI, the chat and file browser APIs, and the backend status poller.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		logger, err := buildLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		database, err := db.Open(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		m := metrics.New()
		chatClient, filesClient, statusClient := buildClients(cfg, logger)

		// Feature wiring.
		widget := chat.New(chatClient, chat.NewStore(database), cfg, logger)
		browser := files.NewBrowser(filesClient, logger)
		uploader := files.NewUploader(filesClient, m, logger)
		filesHandler := files.NewHandler(browser, uploader, filesClient, cfg.TreeDepth, logger)
		poller := status.NewPoller(statusClient, m,
			time.Duration(cfg.Poll.StatusIntervalSeconds)*time.Second,
			time.Duration(cfg.Poll.SuggestionsIntervalSeconds)*time.Second,
			logger)
		statusHandler := status.NewHandler(poller, logger)

		srv := server.New(cfg, m, logger)
		r := srv.Router()
		web.RegisterRoutes(r)
		widget.RegisterRoutes(r)
		filesHandler.RegisterRoutes(r)
		statusHandler.RegisterRoutes(r)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go poller.Run(ctx)

		// Backend URLs follow config edits without a restart.
		go func() {
			err := config.Watch(ctx, cfgFile, logger, func(updated *config.Config) {
				chatClient.SetBaseURL(updated.Backends.ChatURL)
				filesClient.SetBaseURL(updated.Backends.FilesURL)
				statusClient.SetBaseURL(updated.Backends.StatusURL)
			})
			if err != nil {
				logger.Warn("config watch unavailable", zap.Error(err))
			}
		}()

		go func() {
			<-ctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("matdash starting",
			zap.String("version", Version),
			zap.Int("port", cfg.Port),
			zap.String("history_db", cfg.HistoryDB))

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
