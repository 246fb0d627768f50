// Package config loads graphx configuration with Viper.
//
// A YAML file (graphx.yml, config.yml, config/graphx.yml or
// ~/.config/graphx/config.yml) provides the base values, a .env file may add
// environment variables, and GRAPHX_* variables override both:
//
//	var cfg config.Config
//	err := config.LoadConfig("graphx", &cfg)
//	cfg.ApplyDefaults()
//	err = cfg.Validate()
package config
