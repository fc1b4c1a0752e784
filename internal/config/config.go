package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir  string `json:"project_dir"`
	DataDir     string `json:"data_dir"`
	DBPath      string `json:"db_path"`
	MappingFile string `json:"mapping_file"`

	ProviderBaseURL string   `json:"provider_base_url" validate:"required"`
	Watchlist       []string `json:"watchlist"`
	RefreshCron     string   `json:"refresh_cron"`

	LLMProvider string `json:"llm_provider" validate:"oneof=openai deepseek"`
	LLMModel    string `json:"llm_model"`
	LLMBaseURL  string `json:"llm_base_url"`
	LLMAPIKey   string `json:"-"`
	MaxTokens   int    `json:"max_tokens"`

	InitialCash       float64 `json:"initial_cash" validate:"gte=0"`
	MarginRequirement float64 `json:"margin_requirement" validate:"gte=0,lte=1"`

	LogLevel string `json:"log_level"`
	Debug    bool   `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	return &Config{
		ProjectDir:  currentDir,
		DataDir:     filepath.Join(currentDir, "data"),
		DBPath:      filepath.Join(currentDir, "data", "fundcortex.db"),
		MappingFile: "",

		ProviderBaseURL: "https://push2his.eastmoney.com",
		RefreshCron:     "30 18 * * 1-5",

		LLMProvider: "deepseek",
		LLMModel:    "deepseek-chat",
		LLMBaseURL:  "https://api.deepseek.com/v1",
		MaxTokens:   4096,

		InitialCash:       100000,
		MarginRequirement: 0.5,

		LogLevel: "info",
		Debug:    false,
	}
}

// Load builds the configuration: defaults, then the optional JSON file, then
// environment overrides from the process env and an optional .env file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// A missing .env file is fine; real env vars still apply.
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FUNDCORTEX_DATA_DIR"); v != "" {
		c.DataDir = v
		c.DBPath = filepath.Join(v, "fundcortex.db")
	}
	if v := os.Getenv("FUNDCORTEX_PROVIDER_URL"); v != "" {
		c.ProviderBaseURL = v
	}
	if v := os.Getenv("FUNDCORTEX_LLM_PROVIDER"); v != "" {
		c.LLMProvider = v
	}
	if v := os.Getenv("FUNDCORTEX_LLM_MODEL"); v != "" {
		c.LLMModel = v
	}
	if v := os.Getenv("FUNDCORTEX_LLM_BASE_URL"); v != "" {
		c.LLMBaseURL = v
	}

	switch c.LLMProvider {
	case "deepseek":
		c.LLMAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	case "openai":
		c.LLMAPIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// ValidateKeys checks that the selected LLM provider has an API key. Kept
// separate from Load so data-only commands run without credentials.
func (c *Config) ValidateKeys() error {
	if c.LLMAPIKey == "" {
		switch c.LLMProvider {
		case "deepseek":
			return fmt.Errorf("DEEPSEEK_API_KEY is required for the deepseek provider")
		case "openai":
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, filepath.Dir(c.DBPath)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
