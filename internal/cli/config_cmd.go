// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - View and edit configuration.
//
// Subcommands:
//
//	show (default)      Display the effective configuration
//	get <key>           Print one value
//	set <key> <value>   Change a value and save
//	keys                List every key
//	path                Show the configuration file path
//
// Examples:
//
//	askmydocs config set api.base_url https://docs.example.com
//	askmydocs config set storage.backend sqlite
//	askmydocs config get query.default_model --json
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/askmydocs/askmydocs-tui/internal/config"
	"github.com/askmydocs/askmydocs-tui/internal/util"
)

// secretKeys are masked by show and get.
var secretKeys = map[string]bool{
	"storage.redis_password": true,
}

// HandleConfig dispatches the config subcommands.
func HandleConfig(w io.Writer, args Args) error {
	p := NewArgParser(args.Rest)
	sub := strings.ToLower(p.Positional(0))

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	switch sub {
	case "", "show":
		if args.JSON {
			// String already redacts secrets.
			return NewJSONResponse("config", json.RawMessage(cfg.String())).Write(w)
		}
		for _, key := range config.GetAllKeys() {
			v, _ := cfg.Get(key)
			fmt.Fprintf(w, "%s %s\n", DimStyle.Render(util.Pad(key, 26)), displayValue(key, v))
		}
		return nil

	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "askmydocs config get api.base_url")
		}
		v, err := cfg.Get(key)
		if err != nil {
			return NewNotFoundError("config key", key)
		}
		if args.JSON {
			return NewJSONResponse("config", ConfigValueData{Key: key, Value: displayValue(key, v)}).Write(w)
		}
		fmt.Fprintln(w, displayValue(key, v))
		return nil

	case "set":
		key, value := p.Positional(1), p.Joined(2)
		if key == "" || p.PositionalCount() < 3 {
			return ErrMissingArgument("key and value", "askmydocs config set query.default_model openai")
		}
		if _, err := cfg.Get(key); err != nil {
			return NewNotFoundError("config key", key)
		}
		if err := cfg.Set(key, value); err != nil {
			return NewValidationError(key, value, err.Error())
		}
		if err := cfg.Validate(); err != nil {
			return NewValidationError(key, value, err.Error())
		}
		path, err := saveConfig(cfg, args.ConfigPath)
		if err != nil {
			return NewCommandError("config", "save", path, err)
		}
		config.SetGlobal(cfg)
		if args.JSON {
			v, _ := cfg.Get(key)
			return NewJSONResponse("config", ConfigValueData{Key: key, Value: displayValue(key, v)}).Write(w)
		}
		fmt.Fprintf(w, "%s %s saved to %s\n", SuccessStyle.Render("[OK]"), key, path)
		return nil

	case "keys":
		for _, key := range config.GetAllKeys() {
			fmt.Fprintln(w, key)
		}
		return nil

	case "path":
		path := args.ConfigPath
		if path == "" {
			if path, err = config.ConfigPathTOML(); err != nil {
				return NewCommandError("config", "path", "config directory", err)
			}
		}
		if args.JSON {
			return NewJSONResponse("config", map[string]string{"path": path}).Write(w)
		}
		fmt.Fprintln(w, path)
		return nil
	}

	return NewValidationErrorWithExample("subcommand", sub, "expected show, get, set, keys or path",
		"askmydocs config show")
}

// saveConfig writes cfg to path, or to the default TOML file when path is
// empty. The format follows the file extension.
func saveConfig(cfg *config.Config, path string) (string, error) {
	if path == "" {
		p, err := config.ConfigPathTOML()
		if err != nil {
			return "", err
		}
		if err := config.EnsureConfigDir(); err != nil {
			return p, err
		}
		return p, config.SaveTOML(cfg, p)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return path, config.SaveJSON(cfg, path)
	case ".yaml", ".yml":
		return path, fmt.Errorf("saving YAML is not supported; use a .toml or .json path")
	default:
		return path, config.SaveTOML(cfg, path)
	}
}

func displayValue(key string, v interface{}) string {
	s := fmt.Sprint(v)
	if secretKeys[key] && s != "" {
		return "[REDACTED]"
	}
	return s
}
