// Package config loads service configuration with Viper.
//
// LoadConfig finds a config.yml and a .env file for a service, binds
// environment variables over the file values, and unmarshals the result
// into a struct that embeds ServiceConfig:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
//
//	var cfg AppConfig
//	err := config.LoadConfig("books", &cfg)
//
// Props reads single scalar properties from environment variables named
// SECTION__PROPERTY. Module factories use it for settings they need before
// any provider runs:
//
//	url, ok := config.NewProps().String("database", "connection_url")
package config
