package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/smartie/internal/exchange"
	"github.com/ziadkadry99/smartie/internal/server"
	"github.com/ziadkadry99/smartie/internal/webwidget"
)

var (
	servePort       int
	exposeExchanges bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat widget over HTTP",
	Long:  `Starts the HTTP server hosting the chat widget page and one WebSocket chat
session per browser tab. The exchange log API is mounted only with
--expose-exchanges or server.expose_exchanges.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if exposeExchanges {
			cfg.Server.ExposeExchanges = true
		}

		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer logger.Sync()

		database, exchanges, err := openExchangeLog(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		resp, err := newResponder(cfg, exchanges, logger)
		if err != nil {
			return err
		}
		reporter, err := newReporter(cfg, logger)
		if err != nil {
			return err
		}

		widget, err := webwidget.New(webwidget.Options{
			AssistantName: cfg.Widget.AssistantName,
			Greeting:      cfg.Widget.Greeting,
			Placeholder:   cfg.Widget.Placeholder,
			Responder:     resp,
			Reporter:      reporter,
			Logger:        logger,

			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowAll:       cfg.Server.AllowAll,
		})
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowAll:       cfg.Server.AllowAll,
		}, logger)

		widget.RegisterRoutes(srv.Router())
		if cfg.Server.ExposeExchanges {
			exchange.RegisterRoutes(srv.API(), exchanges)
			logger.Warn("exchange log API exposed", zap.String("path", "/api/exchanges"))
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("smartie starting",
			zap.String("version", Version),
			zap.Int("port", cfg.Server.Port),
			zap.String("ask_url", cfg.Endpoint.AskURL),
			zap.String("database", database.Path()),
		)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&exposeExchanges, "expose-exchanges", false, "mount the exchange log API at /api/exchanges")
	rootCmd.AddCommand(serveCmd)
}
