package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// serverName is the key blendmeta registers under in agent MCP configs.
const serverName = "blendmeta"

// agentConfig is a project-level MCP config file an editor agent reads.
type agentConfig struct {
	DisplayName string
	Marker      string // directory whose presence means the agent is in use
	Path        string
	ServersKey  string
	ExtraFields map[string]string
}

var agentConfigs = []agentConfig{
	{DisplayName: "Claude Code", Marker: ".claude", Path: ".mcp.json", ServersKey: "mcpServers"},
	{
		DisplayName: "VS Code", Marker: ".vscode", Path: filepath.Join(".vscode", "mcp.json"),
		ServersKey: "servers", ExtraFields: map[string]string{"type": "stdio"},
	},
	{DisplayName: "Cursor", Marker: ".cursor", Path: filepath.Join(".cursor", "mcp.json"), ServersKey: "mcpServers"},
}

// detectAgentConfigs returns the agents in use under dir: the marker
// directory exists or the config file already does.
func detectAgentConfigs(dir string) []agentConfig {
	var found []agentConfig
	for _, a := range agentConfigs {
		if _, err := os.Stat(filepath.Join(dir, a.Marker)); err == nil {
			found = append(found, a)
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, a.Path)); err == nil {
			found = append(found, a)
		}
	}
	return found
}

func serverEntry(extra map[string]string) map[string]any {
	entry := map[string]any{
		"command": "blendmeta",
		"args":    []any{"serve"},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry adds the blendmeta entry under serversKey, keeping every
// other key. It returns nil, nil when the entry is already present.
func mergeServerEntry(existing []byte, serversKey string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}

	servers[serverName] = serverEntry(extra)
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// configureAgent merges the entry into the agent's config file under dir.
// It reports whether the file changed.
func configureAgent(dir string, a agentConfig, dryRun bool) (bool, error) {
	path := filepath.Join(dir, a.Path)

	var existing []byte
	if data, err := os.ReadFile(path); err == nil {
		existing = data
	} else if !os.IsNotExist(err) {
		return false, err
	}

	merged, err := mergeServerEntry(existing, a.ServersKey, a.ExtraFields)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if merged == nil || dryRun {
		return merged != nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("create directory: %w", err)
	}
	return true, os.WriteFile(path, merged, 0644)
}

// executeSetup registers the MCP server with every agent detected in dir.
func executeSetup(dir string, dryRun bool, w io.Writer) error {
	detected := detectAgentConfigs(dir)
	if len(detected) == 0 {
		fmt.Fprintln(w, "No agent configuration directories (.claude, .vscode, .cursor) found.")
		return nil
	}

	var failed int
	for _, a := range detected {
		changed, err := configureAgent(dir, a, dryRun)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(w, "  ! %s: %v\n", a.DisplayName, err)
		case !changed:
			fmt.Fprintf(w, "  = %s already configured (%s)\n", a.DisplayName, a.Path)
		case dryRun:
			fmt.Fprintf(w, "  ~ %s would be configured (%s)\n", a.DisplayName, a.Path)
		default:
			fmt.Fprintf(w, "  + %s configured (%s)\n", a.DisplayName, a.Path)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d agent config(s) could not be updated", failed)
	}
	return nil
}

// runSetup is the entry point for `blendmeta setup [--dry-run]`.
func runSetup(args []string, stdout, stderr io.Writer) int {
	dryRun := false
	for _, arg := range args {
		if arg == "--dry-run" {
			dryRun = true
		}
	}
	if err := executeSetup(".", dryRun, stdout); err != nil {
		fmt.Fprintf(stderr, "setup: %v\n", err)
		return 1
	}
	return 0
}
