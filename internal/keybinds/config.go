package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// Config represents the user's keybinding overrides.
// Each section maps an action name to a comma-separated key list.
type Config struct {
	Version string            `json:"version"`
	Global  map[string]string `json:"global,omitempty"`
	List    map[string]string `json:"list,omitempty"`
	Form    map[string]string `json:"form,omitempty"`
	Search  map[string]string `json:"search,omitempty"`
	Help    map[string]string `json:"help,omitempty"`
}

// LoadConfig loads keybinding configuration from a JSON or JSONC file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds format: %w", err)
	}

	return &config, nil
}

// ApplyConfig applies user configuration to a registry.
// A configured action loses its default keys in that context.
func ApplyConfig(registry *Registry, config *Config) error {
	contextMappings := map[Context]map[string]string{
		ContextGlobal: config.Global,
		ContextList:   config.List,
		ContextForm:   config.Form,
		ContextSearch: config.Search,
		ContextHelp:   config.Help,
	}

	for context, bindings := range contextMappings {
		for actionStr, keyList := range bindings {
			action := Action(actionStr)
			if !IsKnown(action) {
				return fmt.Errorf("unknown action %q in %s keybindings", actionStr, context)
			}
			if action == ActionQuitForce {
				return fmt.Errorf("%s cannot be rebound", ActionQuitForce)
			}

			keys := splitKeys(keyList)
			if len(keys) == 0 {
				return fmt.Errorf("no keys given for %q in %s keybindings", actionStr, context)
			}

			for _, key := range keys {
				if registry.bindsQuitForce(context, key) {
					return fmt.Errorf("key %q is reserved for %s and cannot be bound to %q", key, ActionQuitForce, actionStr)
				}
			}

			registry.Unbind(context, action)
			registry.RegisterMultiple(context, keys, action)
		}
	}

	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if configPath == "" {
		return registry, nil
	}
	if _, err := os.Stat(configPath); err != nil {
		return registry, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", configPath, err)
	}
	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}

	return registry, nil
}

func splitKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
