package config

import "time"

// Config holds intake configuration.
// Loaded from ./config.yaml or ~/.intake/config.yaml.
type Config struct {
	Server   ServerCfg   `mapstructure:"server" yaml:"server"`
	Storage  StorageCfg  `mapstructure:"storage" yaml:"storage"`
	OCR      OCRCfg      `mapstructure:"ocr" yaml:"ocr"`
	AI       AICfg       `mapstructure:"ai" yaml:"ai"`
	Mappings MappingsCfg `mapstructure:"mappings" yaml:"mappings"`
	Patterns PatternsCfg `mapstructure:"patterns" yaml:"patterns"`
	Pipeline PipelineCfg `mapstructure:"pipeline" yaml:"pipeline"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// StorageCfg configures where document bytes are read from.
type StorageCfg struct {
	// Dir is the root the local store is jailed to.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// RetryAttempts on transient read failures.
	RetryAttempts uint `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	// RetryDelay is the base backoff delay.
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

// OCRCfg configures the tesseract subprocess wrapper.
type OCRCfg struct {
	// Lang is the tesseract language pack, e.g. "eng+deu".
	Lang string `mapstructure:"lang" yaml:"lang"`
}

// AICfg configures the AI extraction collaborator.
type AICfg struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Model   string `mapstructure:"model" yaml:"model"`
	// APIKey supports ${ENV_VAR} syntax.
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// MappingsCfg configures the field-mapping layer.
type MappingsCfg struct {
	// Path to the mapping YAML; empty uses the embedded defaults.
	Path string `mapstructure:"path" yaml:"path"`
	// Watch enables hot reload on file change.
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// PatternsCfg configures the pattern catalog.
type PatternsCfg struct {
	// Path to an override catalog; empty uses the embedded defaults.
	Path string `mapstructure:"path" yaml:"path"`
}

// PipelineCfg tunes processing behavior.
type PipelineCfg struct {
	// ReviewThreshold is the quality score below which records are flagged.
	ReviewThreshold int `mapstructure:"review_threshold" yaml:"review_threshold"`
	// MemoryBudgetMB is the soft per-extraction budget in megabytes.
	MemoryBudgetMB int `mapstructure:"memory_budget_mb" yaml:"memory_budget_mb"`
	// MaxWorkers bounds batch concurrency.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Storage: StorageCfg{
			// Empty means ~/.intake/documents, resolved by the CLI.
			Dir:           "",
			RetryAttempts: 3,
			RetryDelay:    200 * time.Millisecond,
		},
		OCR: OCRCfg{
			Lang: "eng+deu+nld",
		},
		AI: AICfg{
			Enabled: false,
			Model:   "gpt-4o-mini",
			APIKey:  "${OPENAI_API_KEY}",
			Timeout: 30 * time.Second,
		},
		Mappings: MappingsCfg{
			Watch: true,
		},
		Pipeline: PipelineCfg{
			ReviewThreshold: 60,
			MemoryBudgetMB:  64,
			MaxWorkers:      4,
		},
	}
}
