// Package config provides hierarchical configuration resolution for the
// transcript store and its front ends.
//
// This package supports layered configuration with clear precedence:
//  1. Environment variables (highest priority)
//  2. Local config (.voxlog.yaml in the working directory)
//  3. Global config (~/.config/voxlog/config.yaml)
//  4. Built-in defaults (lowest priority)
//
// # Basic Usage
//
// Create a resolver with the standard settings:
//
//	resolver := config.NewResolver(config.DefaultResolverConfig())
//	cfg := resolver.Resolve()
//
//	fmt.Println(cfg.Get(config.KeyStore))    // "file"
//	fmt.Println(cfg.Source(config.KeyStore)) // "default"
//
//	settings, err := cfg.Settings()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
// Environment variables are automatically detected using the configured prefix:
//
//	# With EnvPrefix: "VOXLOG_"
//	VOXLOG_DATA_DIR=/srv/voxlog   # sets "data_dir"
//	VOXLOG_STORE=sqlite           # sets "store"
//
// # Config Sources
//
// Each resolved value tracks where it came from:
//   - "default": Built-in default value
//   - "global": ~/.config/voxlog/config.yaml
//   - "local": .voxlog.yaml in the working directory
//   - "env": Environment variable
//
// # Saving Values
//
// SaveConfig writes individual keys back to the config files:
//
//	save := config.DefaultSaveConfig()
//	if err := save.SaveGlobal("store", "sqlite"); err != nil {
//	    log.Fatal(err)
//	}
package config
