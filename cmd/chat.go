package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/smartie/internal/location"
	"github.com/ziadkadry99/smartie/internal/progress"
	"github.com/ziadkadry99/smartie/internal/render"
	"github.com/ziadkadry99/smartie/internal/terminal"
	"github.com/ziadkadry99/smartie/internal/widget"
)

var (
	chatLat float64
	chatLon float64
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long:  `Opens a chat session in the terminal against the configured answer endpoint. Type /quit or press Ctrl+D to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
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

		renderer := render.New()
		view := terminal.NewView(cfg.Widget.AssistantName, os.Stdout, renderer, progress.NewIndicator(os.Stderr))
		sess := widget.New(widget.Options{
			Greeting:    cfg.Widget.Greeting,
			Placeholder: cfg.Widget.Placeholder,
			Renderer:    renderer,
			Responder:   resp,
			Reporter:    reporter,
			View:        view,
			Logger:      logger,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var coords location.Coordinates
		if cmd.Flags().Changed("lat") {
			coords.Latitude = location.Float(chatLat)
		}
		if cmd.Flags().Changed("lon") {
			coords.Longitude = location.Float(chatLon)
		}
		if err := sess.SetLocation(ctx, coords); err != nil {
			return fmt.Errorf("--lat/--lon: %w", err)
		}

		return terminal.NewChat(sess, terminal.PromptReader{Label: "You"}).Run(ctx)
	},
}

func init() {
	chatCmd.Flags().Float64Var(&chatLat, "lat", 0, "latitude sent with each question")
	chatCmd.Flags().Float64Var(&chatLon, "lon", 0, "longitude sent with each question")
	rootCmd.AddCommand(chatCmd)
}
