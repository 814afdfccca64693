package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/joelkehle/sanctionguard/internal/sanctions"
)

const (
	DefaultFeedURL   = "https://www.treasury.gov/ofac/downloads/sdn.xml"
	DefaultThreshold = 60
	MinThreshold     = 50
	MaxThreshold     = 100
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ModelConfig struct {
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	FallbackModel string `yaml:"fallback_model"`
}

type ModelsConfig struct {
	Prosecutor ModelConfig `yaml:"prosecutor"`
	Defense    ModelConfig `yaml:"defense"`
	Judge      ModelConfig `yaml:"judge"`
}

type CredentialsConfig struct {
	GroqAPIKey      string `yaml:"groq_api_key"`
	GroqBaseURL     string `yaml:"groq_base_url"`
	GoogleAPIKey    string `yaml:"google_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
}

type SMTPConfig struct {
	Server string `yaml:"server"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

// Enabled reports whether server, user, pass and to are all set.
func (s SMTPConfig) Enabled() bool {
	return s.Server != "" && s.User != "" && s.Pass != "" && s.To != ""
}

type Config struct {
	Log          LogConfig         `yaml:"log"`
	DatabasePath string            `yaml:"database_path"`
	FeedURL      string            `yaml:"feed_url"`
	Threshold    int               `yaml:"threshold"`
	CaseDBPath   string            `yaml:"case_db_path"`
	Addr         string            `yaml:"addr"`
	ChromePath   string            `yaml:"chrome_path"`
	OTLPEndpoint string            `yaml:"otlp_endpoint"`
	Models       ModelsConfig      `yaml:"models"`
	Credentials  CredentialsConfig `yaml:"credentials"`
	SMTP         SMTPConfig        `yaml:"smtp"`
}

func Default() Config {
	return Config{
		Log:          LogConfig{Level: "info", Format: "json"},
		DatabasePath: sanctions.DefaultDatabaseFile,
		FeedURL:      DefaultFeedURL,
		Threshold:    DefaultThreshold,
		Addr:         ":8095",
		Models: ModelsConfig{
			Prosecutor: ModelConfig{Provider: "groq", Model: "llama-3.3-70b-versatile"},
			Defense:    ModelConfig{Provider: "groq", Model: "openai/gpt-oss-20b", FallbackModel: "mixtral-8x7b-32768"},
			Judge:      ModelConfig{Provider: "gemini", Model: "gemini-2.5-flash", FallbackModel: "gemini-1.5-flash"},
		},
		Credentials: CredentialsConfig{GroqBaseURL: "https://api.groq.com/openai/v1"},
		SMTP:        SMTPConfig{Server: "smtp.gmail.com", Port: 587},
	}
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are ignored.
func LoadDotEnv(files ...string) {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) > 0 {
		_ = godotenv.Load(present...)
	}
}

// Load starts from Default, overlays the YAML file at path (if non-empty,
// with ${VAR} expansion) and then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		expanded := os.ExpandEnv(string(raw))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Threshold < MinThreshold || c.Threshold > MaxThreshold {
		return fmt.Errorf("threshold %d out of range [%d,%d]", c.Threshold, MinThreshold, MaxThreshold)
	}
	for role, m := range map[string]ModelConfig{"prosecutor": c.Models.Prosecutor, "defense": c.Models.Defense, "judge": c.Models.Judge} {
		switch m.Provider {
		case "groq", "gemini", "anthropic":
		default:
			return fmt.Errorf("%s: unknown provider %q", role, m.Provider)
		}
		if strings.TrimSpace(m.Model) == "" {
			return fmt.Errorf("%s: model is required", role)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Log.Level, "SANCTIONGUARD_LOG_LEVEL")
	setString(&cfg.Log.Format, "SANCTIONGUARD_LOG_FORMAT")
	setString(&cfg.DatabasePath, "SANCTIONGUARD_DB")
	setString(&cfg.FeedURL, "SANCTIONGUARD_FEED_URL")
	setInt(&cfg.Threshold, "SANCTIONGUARD_THRESHOLD")
	setString(&cfg.CaseDBPath, "SANCTIONGUARD_CASE_DB")
	setString(&cfg.Addr, "SANCTIONGUARD_ADDR")
	setString(&cfg.ChromePath, "SANCTIONGUARD_CHROME_PATH")
	setString(&cfg.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	setString(&cfg.Credentials.GroqAPIKey, "GROQ_API_KEY")
	setString(&cfg.Credentials.GroqBaseURL, "GROQ_BASE_URL")
	setString(&cfg.Credentials.GoogleAPIKey, "GEMINI_API_KEY")
	setString(&cfg.Credentials.GoogleAPIKey, "GOOGLE_API_KEY")
	setString(&cfg.Credentials.AnthropicAPIKey, "ANTHROPIC_API_KEY")

	setString(&cfg.SMTP.Server, "SMTP_SERVER")
	setInt(&cfg.SMTP.Port, "SMTP_PORT")
	setString(&cfg.SMTP.User, "SMTP_USER")
	setString(&cfg.SMTP.Pass, "SMTP_PASS")
	setString(&cfg.SMTP.From, "SMTP_FROM")
	setString(&cfg.SMTP.To, "SMTP_TO")
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
