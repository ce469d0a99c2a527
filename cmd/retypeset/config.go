package main

import (
	"context"
	"fmt"
	"os"

	"github.com/delaneyj/retypeset/mathtex"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func loadConfig(path string) (mathtex.Config, error) {
	cfg := mathtex.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func printConfig(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String(configKey))
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}
