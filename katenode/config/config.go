// Package config loads the node configuration from YAML with KATE_ prefixed
// environment overrides.
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
	"github.com/LumeraProtocol/kate/pkg/utils"
)

// EnvPrefix prefixes environment overrides, e.g. KATE_RPC_LISTEN_ADDRESS.
const EnvPrefix = "KATE"

// Config represents the YAML configuration structure
type Config struct {
	RPC        RPCConfig        `yaml:"rpc" mapstructure:"rpc"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Chain      ChainConfig      `yaml:"chain" mapstructure:"chain"`
	VRF        VRFConfig        `yaml:"vrf" mapstructure:"vrf"`
	Commitment CommitmentConfig `yaml:"commitment" mapstructure:"commitment"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

type RPCConfig struct {
	ListenAddress string `yaml:"listen_address" mapstructure:"listen_address"`
	// MaxRequestsPerSecond of zero disables rate limiting.
	MaxRequestsPerSecond int `yaml:"max_requests_per_second" mapstructure:"max_requests_per_second"`
	// EnableAdmin serves kate_resetCache. Keep it off on public endpoints.
	EnableAdmin bool `yaml:"enable_admin" mapstructure:"enable_admin"`
}

type CacheConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
	// MaxConcurrentBuilds of zero leaves builds of distinct blocks unbounded.
	MaxConcurrentBuilds int64 `yaml:"max_concurrent_builds" mapstructure:"max_concurrent_builds"`
}

type ChainConfig struct {
	SnapshotPath string `yaml:"snapshot_path" mapstructure:"snapshot_path"`
}

type VRFConfig struct {
	// Hasher hashes legacy storage randomness into a seed: blake2b or blake3.
	Hasher string `yaml:"hasher" mapstructure:"hasher"`
}

type CommitmentConfig struct {
	// UncheckedParams trusts chain supplied public parameters without
	// subgroup checks.
	UncheckedParams bool `yaml:"unchecked_params" mapstructure:"unchecked_params"`
}

type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		RPC:        RPCConfig{ListenAddress: DefaultListenAddress},
		Cache:      CacheConfig{Capacity: DefaultCacheCapacity},
		Chain:      ChainConfig{SnapshotPath: DefaultSnapshotPath},
		VRF:        VRFConfig{Hasher: utils.HasherBlake2b},
		Commitment: CommitmentConfig{},
		Log:        LogConfig{Level: DefaultLogLevel, Environment: DefaultEnvironment},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("rpc.listen_address", d.RPC.ListenAddress)
	v.SetDefault("rpc.max_requests_per_second", d.RPC.MaxRequestsPerSecond)
	v.SetDefault("rpc.enable_admin", d.RPC.EnableAdmin)
	v.SetDefault("cache.capacity", d.Cache.Capacity)
	v.SetDefault("cache.max_concurrent_builds", d.Cache.MaxConcurrentBuilds)
	v.SetDefault("chain.snapshot_path", d.Chain.SnapshotPath)
	v.SetDefault("vrf.hasher", d.VRF.Hasher)
	v.SetDefault("commitment.unchecked_params", d.Commitment.UncheckedParams)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.environment", d.Log.Environment)
}

// Load reads the configuration file at path, applies environment overrides
// and validates the result. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	ctx := logtrace.CtxWithOrigin(context.Background(), "config")

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, errors.Wrap(err, "error getting absolute path for config file")
		}
		if _, err := os.Stat(absPath); err != nil {
			return nil, errors.Wrapf(err, "config file %s", absPath)
		}
		v.SetConfigFile(absPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", absPath)
		}
		logtrace.Info(ctx, "Loading configuration", logtrace.Fields{"path": absPath})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the node cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPC.ListenAddress) == "" {
		return errors.New("rpc.listen_address is required")
	}
	if c.RPC.MaxRequestsPerSecond < 0 {
		return errors.Errorf("rpc.max_requests_per_second must not be negative, got %d", c.RPC.MaxRequestsPerSecond)
	}
	if c.Cache.Capacity <= 0 {
		return errors.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity)
	}
	if c.Cache.MaxConcurrentBuilds < 0 {
		return errors.Errorf("cache.max_concurrent_builds must not be negative, got %d", c.Cache.MaxConcurrentBuilds)
	}
	if strings.TrimSpace(c.Chain.SnapshotPath) == "" {
		return errors.New("chain.snapshot_path is required")
	}
	if _, err := utils.HasherByName(c.VRF.Hasher); err != nil {
		return errors.Wrap(err, "vrf.hasher")
	}
	return nil
}

// Hasher returns the configured 256-bit hash.
func (c *Config) Hasher() utils.Hash256 {
	h, err := utils.HasherByName(c.VRF.Hasher)
	if err != nil {
		return utils.Blake2b256
	}
	return h
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}
