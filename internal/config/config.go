package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Pay     PayConfig     `yaml:"pay"`
	Catalog CatalogConfig `yaml:"catalog"`
	Scoring ScoringConfig `yaml:"scoring"`
	Hermes  HermesConfig  `yaml:"hermes"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"`
	// RateLimit is requests per minute per client; 0 disables limiting.
	RateLimit int `yaml:"rate_limit"`
}

type PayConfig struct {
	BaseMonthlySalary  float64 `yaml:"base_monthly_salary"`
	QuarterPool        float64 `yaml:"quarter_pool"`
	DefaultTaxKeepRate float64 `yaml:"default_tax_keep_rate"`
}

// CatalogConfig maps project/region names to metric weights. Weight keys may
// be metric identifiers (performance, margin, ...) or sheet labels.
type CatalogConfig struct {
	Projects map[string]map[string]float64 `yaml:"projects"`
	Aliases  map[string]string             `yaml:"aliases"`
}

type ScoringConfig struct {
	// CoefficientsFile replaces the built-in coefficient table when set.
	CoefficientsFile string `yaml:"coefficients_file"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultCatalog returns the regional weights in force for the sales department.
func DefaultCatalog() CatalogConfig {
	return CatalogConfig{
		Projects: map[string]map[string]float64{
			"新疆":   {"performance": 0.25, "margin": 0.325, "settlement": 0.025, "invoice": 0.05, "payback": 0.2, "audit_bias": 0.05, "customer_cost": 0.1},
			"山东":   {"performance": 0.4, "margin": 0.3, "settlement": 0.025, "invoice": 0.025, "payback": 0.175, "audit_bias": 0.025, "customer_cost": 0.05},
			"青海":   {"performance": 0.45, "margin": 0.25, "settlement": 0.025, "invoice": 0.025, "payback": 0.15, "audit_bias": 0.025, "customer_cost": 0.075},
			"湖北":   {"performance": 0.3, "margin": 0.35, "settlement": 0.10, "invoice": 0.025, "payback": 0.075, "audit_bias": 0.05, "customer_cost": 0.1},
			"华中区域": {"performance": 0.4, "margin": 0.175, "settlement": 0.025, "invoice": 0.075, "payback": 0.175, "audit_bias": 0.025, "customer_cost": 0.125},
		},
		Aliases: map[string]string{
			"xinjiang":      "新疆",
			"shandong":      "山东",
			"qinghai":       "青海",
			"hubei":         "湖北",
			"huazhong":      "华中区域",
			"central-china": "华中区域",
			"华中":            "华中区域",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
			RateLimit:   120,
		},
		Pay: PayConfig{
			BaseMonthlySalary:  6000,
			QuarterPool:        36000,
			DefaultTaxKeepRate: 0.97,
		},
		Catalog: DefaultCatalog(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// A catalog in the file replaces the built-in one rather than merging.
		var probe struct {
			Catalog *CatalogConfig `yaml:"catalog"`
		}
		if err := yaml.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if probe.Catalog != nil {
			cfg.Catalog = CatalogConfig{}
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the pay constants and that every alias names a project.
func (c *Config) Validate() error {
	if c.Pay.BaseMonthlySalary < 0 {
		return fmt.Errorf("pay.base_monthly_salary must be >= 0, got %g", c.Pay.BaseMonthlySalary)
	}
	if c.Pay.QuarterPool < 0 {
		return fmt.Errorf("pay.quarter_pool must be >= 0, got %g", c.Pay.QuarterPool)
	}
	if r := c.Pay.DefaultTaxKeepRate; !(r >= 0 && r <= 1) {
		return fmt.Errorf("pay.default_tax_keep_rate must be in [0,1], got %g", r)
	}
	if len(c.Catalog.Projects) == 0 {
		return fmt.Errorf("catalog.projects is empty")
	}
	for alias, target := range c.Catalog.Aliases {
		if _, ok := c.Catalog.Projects[target]; !ok {
			return fmt.Errorf("catalog alias %q targets unknown project %q", alias, target)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUARTERPAY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("QUARTERPAY_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("QUARTERPAY_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("QUARTERPAY_BASE_MONTHLY_SALARY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pay.BaseMonthlySalary = f
		}
	}
	if v := os.Getenv("QUARTERPAY_QUARTER_POOL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pay.QuarterPool = f
		}
	}
	if v := os.Getenv("QUARTERPAY_TAX_KEEP_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pay.DefaultTaxKeepRate = f
		}
	}
	if v := os.Getenv("QUARTERPAY_COEFFICIENTS_FILE"); v != "" {
		cfg.Scoring.CoefficientsFile = v
	}
	if v := os.Getenv("QUARTERPAY_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("QUARTERPAY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QUARTERPAY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
