package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/BurntSushi/toml"

	"fundforge/crypto"
	"fundforge/native/escrow"
)

// Config drives the fundforge operator tooling: where state lives, which
// identity administers the registry, and any overrides to the fixed reward
// schedule.
type Config struct {
	DataDir string `toml:"DataDir"`
	Env     string `toml:"Env"`
	Admin   string `toml:"Admin"`

	Rewards RewardsConfig `toml:"Rewards"`
	Project ProjectConfig `toml:"Project"`
}

// RewardsConfig overrides the default reward schedule. Amounts are decimal
// strings in base reward units; zero values fall back to the defaults.
type RewardsConfig struct {
	VerificationReward        string `toml:"VerificationReward"`
	DonationMultiplier        int64  `toml:"DonationMultiplier"`
	MilestoneCompletionReward string `toml:"MilestoneCompletionReward"`
	MilestoneReputationBoost  uint64 `toml:"MilestoneReputationBoost"`
}

// ProjectConfig describes the project a `deploy` invocation stamps out.
type ProjectConfig struct {
	Creator     string `toml:"Creator"`
	Name        string `toml:"Name"`
	Description string `toml:"Description"`
	MetadataRef string `toml:"MetadataRef"`
	FundingGoal string `toml:"FundingGoal"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./forge-data"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks address and amount fields upfront so failures surface at
// startup instead of mid-deployment.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Admin) == "" {
		return fmt.Errorf("config: Admin address required")
	}
	if _, err := crypto.DecodeAddress(c.Admin); err != nil {
		return fmt.Errorf("config: invalid Admin address: %w", err)
	}
	if c.Project.Creator != "" {
		if _, err := crypto.DecodeAddress(c.Project.Creator); err != nil {
			return fmt.Errorf("config: invalid Project.Creator address: %w", err)
		}
	}
	for name, amount := range map[string]string{
		"Rewards.VerificationReward":        c.Rewards.VerificationReward,
		"Rewards.MilestoneCompletionReward": c.Rewards.MilestoneCompletionReward,
		"Project.FundingGoal":               c.Project.FundingGoal,
	} {
		if amount == "" {
			continue
		}
		if _, ok := new(big.Int).SetString(amount, 10); !ok {
			return fmt.Errorf("config: %s is not a valid decimal amount: %q", name, amount)
		}
	}
	return nil
}

// AdminAddress returns the validated administrator identity.
func (c *Config) AdminAddress() [20]byte {
	var addr [20]byte
	copy(addr[:], crypto.MustDecodeAddress(c.Admin).Bytes())
	return addr
}

// EscrowParams materialises the reward schedule, applying defaults for any
// field left unset.
func (c *Config) EscrowParams() escrow.Params {
	params := escrow.Params{}
	if c.Rewards.VerificationReward != "" {
		params.VerificationReward, _ = new(big.Int).SetString(c.Rewards.VerificationReward, 10)
	}
	if c.Rewards.DonationMultiplier > 0 {
		params.DonationMultiplier = big.NewInt(c.Rewards.DonationMultiplier)
	}
	if c.Rewards.MilestoneCompletionReward != "" {
		params.MilestoneCompletionReward, _ = new(big.Int).SetString(c.Rewards.MilestoneCompletionReward, 10)
	}
	if c.Rewards.MilestoneReputationBoost > 0 {
		params.MilestoneReputationBoost = c.Rewards.MilestoneReputationBoost
	} else {
		params.MilestoneReputationBoost = escrow.DefaultParams().MilestoneReputationBoost
	}
	return params.Normalize()
}

// InitParams materialises the project payload for a deployment.
func (c *Config) InitParams() (escrow.InitParams, error) {
	if c.Project.Creator == "" {
		return escrow.InitParams{}, fmt.Errorf("config: Project.Creator address required")
	}
	var creator [20]byte
	copy(creator[:], crypto.MustDecodeAddress(c.Project.Creator).Bytes())
	goal := new(big.Int)
	if c.Project.FundingGoal != "" {
		goal, _ = new(big.Int).SetString(c.Project.FundingGoal, 10)
	}
	return escrow.InitParams{
		Creator:     creator,
		Name:        c.Project.Name,
		Description: c.Project.Description,
		MetadataRef: c.Project.MetadataRef,
		FundingGoal: goal,
	}, nil
}
