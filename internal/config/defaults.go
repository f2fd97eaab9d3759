package config

import (
	"time"

	"github.com/ziadkadry99/smartie/internal/responder"
	"github.com/ziadkadry99/smartie/internal/transcript"
	"github.com/ziadkadry99/smartie/internal/webwidget"
	"github.com/ziadkadry99/smartie/internal/widget"
)

// DefaultPath is where the config file is looked up and saved.
const DefaultPath = ".smartie.yml"

// DefaultTimeout bounds each answer request.
const DefaultTimeout = 60 * time.Second

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			AskURL:  "http://localhost:5000/ask",
			Timeout: DefaultTimeout.String(),
		},
		Widget: WidgetConfig{
			AssistantName: webwidget.DefaultAssistantName,
			Greeting:      widget.DefaultGreeting,
			Placeholder:   transcript.DefaultPlaceholder,
			ErrorText:     responder.DefaultErrorText,
		},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{
			DataDir: ".smartie",
		},
	}
}
