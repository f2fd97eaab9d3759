package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to smartie! Let's configure your chat widget.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Answer endpoint.
	askPrompt := promptui.Prompt{
		Label:   "Answer endpoint URL",
		Default: cfg.Endpoint.AskURL,
		Validate: func(s string) error {
			return validateURL(s)
		},
	}
	askURL, err := askPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("answer endpoint: %w", err)
	}
	cfg.Endpoint.AskURL = askURL

	// 2. Location reporting.
	locationPrompt := promptui.Select{
		Label: "Report visitor location to the backend?",
		Items: []string{
			"no: send coordinates with questions only",
			"yes: also post them to a location endpoint",
		},
	}
	locIdx, _, err := locationPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("location selection: %w", err)
	}
	if locIdx == 1 {
		locURLPrompt := promptui.Prompt{
			Label:   "Location endpoint URL",
			Default: strings.TrimSuffix(askURL, "/ask") + "/user_location",
			Validate: func(s string) error {
				return validateURL(s)
			},
		}
		cfg.Endpoint.LocationURL, err = locURLPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("location endpoint: %w", err)
		}
	}

	// 3. Assistant name and greeting.
	namePrompt := promptui.Prompt{
		Label:   "Assistant name",
		Default: cfg.Widget.AssistantName,
	}
	cfg.Widget.AssistantName, err = namePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("assistant name: %w", err)
	}

	greetingPrompt := promptui.Prompt{
		Label:   "Greeting shown on first open",
		Default: cfg.Widget.Greeting,
	}
	cfg.Widget.Greeting, err = greetingPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("greeting: %w", err)
	}

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			p, err := strconv.Atoi(s)
			if err != nil || p < 1 || p > 65535 {
				return fmt.Errorf("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 5. Allowed origins.
	originsPrompt := promptui.Prompt{
		Label:   "Origins allowed to embed the widget (comma-separated, * for any)",
		Default: strings.Join(cfg.Server.AllowedOrigins, ","),
	}
	originsStr, err := originsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("allowed origins: %w", err)
	}
	origins := splitAndTrim(originsStr)
	if len(origins) == 1 && origins[0] == "*" {
		cfg.Server.AllowAll = true
		origins = nil
	}
	cfg.Server.AllowedOrigins = origins

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
