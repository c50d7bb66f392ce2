// Package config provides the configuration system for splice.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Session (Set)           │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← SPLICE_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/splice/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The file may be TOML or YAML, chosen by extension. The default file is
// optional; a file named with WithFile must exist.
//
// # Basic Usage
//
//	cfg := config.New(config.WithFile(path))
//	if err := cfg.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	workers, err := cfg.GetInt("resources.loadWorkers")
//
//	// Typed sections fall back to defaults on bad values.
//	res := cfg.Resources()
//	fmt.Println(res.StatCacheTTL)
package config
