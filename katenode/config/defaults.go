package config

// Centralized default values for configuration

const (
	DefaultListenAddress = "0.0.0.0:9933"
	DefaultCacheCapacity = 2048
	DefaultSnapshotPath  = "./data/chain.db"
	DefaultLogLevel      = "info"
	DefaultEnvironment   = "dev"
	DefaultConfigFile    = "config.yml"
)
