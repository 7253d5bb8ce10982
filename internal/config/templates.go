package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# MarketSense Configuration

[engine]
# News feed refresh interval
news_interval = "120s"
# Economic/earnings calendar refresh interval
calendar_interval = "1800s"
# Delay between successive entity fetches in a full scan
scan_stagger = "1s"
# Maximum citations kept per entity analysis
entity_citations = 5
# Maximum citations kept in the news feed
news_citations = 10
# Per-request timeout against the completion service
request_timeout = "90s"

[provider]
# Completion service backend: "gemini" or "openai"
name = "gemini"
gemini_model = "gemini-2.5-flash"
openai_model = "gpt-4o-mini"

[logging]
level = "info"
console = true
file = true
`

const credentialsTemplate = `# MarketSense Credentials
# Environment variables GEMINI_API_KEY, OPENAI_API_KEY and TAVILY_API_KEY
# override these values.

[gemini]
api_key = ""

[openai]
api_key = ""

[tavily]
api_key = ""
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(configDir, "config.toml", configTemplate, 0644)
}

func createTemplateCredentials(configDir string) error {
	// Credentials are secrets: owner-only permissions.
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate, 0600)
}

func writeTemplate(configDir, name, content string, perm os.FileMode) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
