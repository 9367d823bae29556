// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/flash/pkg/types"
)

// appConfig is the merged configuration: defaults, then the config file,
// then FLASH_* environment variables. Flags are applied per command.
var appConfig = types.DefaultConfig()

var (
	configErr      error
	configFileUsed string
)

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("flash")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "flash"))
		}
	}

	viper.SetEnvPrefix("FLASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := registerDefaults(viper.GetViper(), types.DefaultConfig()); err != nil {
		configErr = err
		return
	}

	if err := viper.ReadInConfig(); err == nil {
		configFileUsed = viper.ConfigFileUsed()
		fmt.Fprintln(os.Stderr, "Using config file:", configFileUsed)
	} else if cfgFile != "" {
		configErr = err
		return
	}

	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		configErr = fmt.Errorf("decoding configuration: %w", err)
		return
	}
	appConfig = cfg
}

// registerDefaults declares every key of cfg to v so that AutomaticEnv can
// override nested keys such as kindle.backend through FLASH_KINDLE_BACKEND.
func registerDefaults(v *viper.Viper, cfg types.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("decoding defaults: %w", err)
	}
	setDefaults(v, "", tree)

	// Keys left out of the encoded defaults (omitempty) still get an env binding.
	for _, key := range []string{"kindle.mail_to", "mail.username", "imd.username", "appknox.username"} {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

