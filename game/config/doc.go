// Package config provides rule set management for Black Block Blast.
//
// The config package handles:
//   - Loading rule sets from JSON or HCL files
//   - Applying defaults and validating every loaded file
//   - Default rule set selection
//   - Rule set discovery and listing
//
// Configuration Format:
//
// Rule sets live in the configs directory as name.json or name.hcl. Each
// defines the well size, gravity interval, points per cleared line, the
// color palette and the player-facing messages. Unset numeric fields and an
// empty palette fall back to the classic values.
//
//	name             = "Wide"
//	description      = "A 14 column well"
//	cols             = 14
//	tick_interval_ms = 500
//
//	messages {
//	  welcome   = "Wide open."
//	  game_over = "Topped out."
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal().Err(err).Msg("config")
//	}
//
//	// Load specific rule set; the extension is optional
//	gameConfig, err := manager.LoadConfig("sprint")
//
//	// Get default rule set (classic when present)
//	defaultConfig := manager.GetDefault()
//
//	// List available rule sets
//	configs, err := manager.ListConfigs()
package config
