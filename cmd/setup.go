package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// Init writes a starter config file from the embedded template. Refuses to
// overwrite an existing file.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlainln("%s %s", ui.OK("Created"), configPath)
	return r.writePlainln("%s", ui.Help("Fill in [auth] and [credentials.spotify] before running serve."))
}
