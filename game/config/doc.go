// Package config loads and validates the runtime settings.
//
// Settings live in an optional JSON file. Missing fields keep their
// defaults; command-line flags are applied on top by the caller and the
// result is checked with Validate.
//
// Settings Format:
//
//	{
//	  "score_store": "sqlite",
//	  "data_dir": "./data",
//	  "session_retention": "24h",
//	  "cleanup_interval": "1h",
//	  "sync_interval": "30s",
//	  "spawn_delay": "150ms",
//	  "max_bulk_moves": 50
//	}
//
// Durations are Go duration strings; bare numbers are read as seconds.
//
// Usage:
//
//	settings, err := config.Load("twenty48.json")
//	if errors.Is(err, config.ErrInvalidSettings) {
//		log.Fatal().Err(err).Msg("bad settings")
//	}
package config
