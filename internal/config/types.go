package config

// Config is the top-level smartie configuration, corresponding to .smartie.yml.
type Config struct {
	Endpoint EndpointConfig `yaml:"endpoint" koanf:"endpoint"`
	Widget   WidgetConfig   `yaml:"widget" koanf:"widget"`
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	Log      LogConfig      `yaml:"log" koanf:"log"`
}

// EndpointConfig holds the remote answer service settings.
type EndpointConfig struct {
	AskURL      string `yaml:"ask_url" koanf:"ask_url"`
	LocationURL string `yaml:"location_url" koanf:"location_url"`
	// Timeout is a Go duration string such as "60s". "0" waits indefinitely.
	Timeout string `yaml:"timeout" koanf:"timeout"`
}

// WidgetConfig holds the fixed texts shown to visitors.
type WidgetConfig struct {
	AssistantName string `yaml:"assistant_name" koanf:"assistant_name"`
	Greeting      string `yaml:"greeting" koanf:"greeting"`
	Placeholder   string `yaml:"placeholder" koanf:"placeholder"`
	ErrorText     string `yaml:"error_text" koanf:"error_text"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	AllowAll       bool     `yaml:"allow_all" koanf:"allow_all"`
	// ExposeExchanges mounts the exchange log API. It carries session IDs,
	// so it stays off on public listeners unless asked for.
	ExposeExchanges bool `yaml:"expose_exchanges" koanf:"expose_exchanges"`
}

// LogConfig holds settings for the exchange log.
type LogConfig struct {
	DataDir string `yaml:"data_dir" koanf:"data_dir"`
}
