package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/black-block-blast/game/config"
	"github.com/wricardo/black-block-blast/game/engine"
)

// ValidationResult captures the outcome of validating a single file
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Config *engine.GameConfig
}

// ValidateFile parses and validates one rule-set file
func ValidateFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read file: %v", err))
		return result
	}

	gameConfig, err := config.ParseConfig(path, data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Config = gameConfig

	if gameConfig.Rows < 8 {
		result.Errors = append(result.Errors, fmt.Sprintf("warning: %d rows leaves no room to steer", gameConfig.Rows))
	}
	return result
}

// configFiles lists the rule-set files in dir
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.hcl"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

func configsCommand() *cli.Command {
	return &cli.Command{
		Name:  "configs",
		Usage: "Inspect rule-set files",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Summarize the rule sets in the config directory",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					manager, err := config.NewManager(cmd.String("config-dir"))
					if err != nil {
						return err
					}
					configs, err := manager.ListConfigs()
					if err != nil {
						return err
					}

					w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME\tBOARD\tGRAVITY\tPOINTS/LINE\tFILE")
					for _, c := range configs {
						fmt.Fprintf(w, "%s\t%s\t%dx%d\t%dms\t%d\t%s\n",
							c.ConfigID, c.Name, c.Cols, c.Rows, c.TickIntervalMS, c.PointsPerLine, c.Filename)
					}
					return w.Flush()
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate rule-set files (all files in the config directory by default)",
				ArgsUsage: "[FILE...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					files := cmd.Args().Slice()
					if len(files) == 0 {
						var err error
						if files, err = configFiles(cmd.String("config-dir")); err != nil {
							return err
						}
					}
					if len(files) == 0 {
						return fmt.Errorf("no configuration files found")
					}

					invalid := reportValidation(cmd.Root().Writer, files)
					if invalid > 0 {
						return fmt.Errorf("%d of %d files invalid", invalid, len(files))
					}
					return nil
				},
			},
		},
	}
}

// reportValidation prints one block per file and returns the number of invalid files
func reportValidation(w io.Writer, files []string) int {
	invalid := 0
	for _, file := range files {
		result := ValidateFile(file)
		if !result.Valid {
			invalid++
			fmt.Fprintf(w, "✗ %s\n", result.File)
			for _, e := range result.Errors {
				fmt.Fprintf(w, "    %s\n", e)
			}
			continue
		}

		c := result.Config
		fmt.Fprintf(w, "✓ %s: %s (%dx%d, %dms, %d points per line)\n",
			result.File, c.Name, c.Cols, c.Rows, c.TickIntervalMS, c.PointsPerLine)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
	return invalid
}
