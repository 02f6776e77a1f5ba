package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Agent variant names.
const (
	PrimalUCT = "primal_uct"
	DualUCT   = "dual_uct"
	ParetoUCT = "pareto_uct"
)

// AgentConfig carries the tunables of one agent instance. Zero fields
// fall back to the agent package defaults.
type AgentConfig struct {
	Variant     string  `yaml:"variant"`
	MaxDepth    int     `yaml:"max_depth"`
	Simulations int     `yaml:"num_sim"`
	RiskThd     float64 `yaml:"risk_thd"`
	Gamma       float64 `yaml:"gamma"`
	Exploration float64 `yaml:"exploration_constant"`
	LR          float64 `yaml:"lr"`
	MixK        int     `yaml:"mix_k"`
	MixStep     float64 `yaml:"mix_step"`
	Seed        uint64  `yaml:"seed"`
}

type Config struct {
	Agents []AgentConfig `yaml:"agents"`
}

// Load reads and validates a YAML agent configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Agents) == 0 {
		return fmt.Errorf("config names no agents")
	}
	for i, a := range c.Agents {
		err := a.Validate()
		if err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
	}
	return nil
}

func (a *AgentConfig) Validate() error {
	switch a.Variant {
	case PrimalUCT, DualUCT, ParetoUCT:
	default:
		return fmt.Errorf("unknown variant %q", a.Variant)
	}
	// Zero fields mean "use the agent default", so only reject values
	// that are invalid outright.
	if a.MaxDepth < 0 {
		return fmt.Errorf("max_depth cannot be negative")
	}
	if a.Simulations < 0 {
		return fmt.Errorf("num_sim cannot be negative")
	}
	if a.RiskThd < 0 || a.RiskThd > 1 {
		return fmt.Errorf("risk_thd must be in [0, 1]")
	}
	if a.Gamma < 0 || a.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1]")
	}
	if a.Exploration < 0 {
		return fmt.Errorf("exploration_constant cannot be negative")
	}
	if a.LR < 0 {
		return fmt.Errorf("lr cannot be negative")
	}
	if a.MixK < 0 || a.MixStep < 0 {
		return fmt.Errorf("mix grid parameters cannot be negative")
	}
	return nil
}
