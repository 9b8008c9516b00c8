// Package initcmder provides the init command for initializing a local .engram
// directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietmindco/engram/pkg/config"
)

const (
	dirName = ".engram"
)

const initLongDesc string = `Initialize a new .engram/ directory in the current working directory.

Creates a local .engram/ directory that takes precedence over the default
~/.engram/ directory for the fact database, session state, configuration,
and other engram operations. A config.toml with default values is written
on first run.

The --preset flag seeds config.toml for a known completion provider
(openai, anthropic, ollama) or fetches a shared config.toml from an
http(s) URL. Re-running with --preset overwrites the existing config.

This is useful for maintaining separate engram state per project or directory.

Examples:
  engram init
  engram init --preset anthropic
  engram init --preset https://configs.example.com/team-engram.toml`

const initShortDesc string = "Initialize a local .engram/ directory"

type initCmder struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCmder{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "seed config.toml from a provider preset or http(s) URL")

	return cmd
}

func (c *initCmder) run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, statErr := os.Stat(dir)
	alreadyInitialized := statErr == nil && info.IsDir()

	if !alreadyInitialized {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .engram directory: %w", err)
		}
	}

	// Plain re-init leaves existing contents (including config.toml) alone.
	// A preset always rewrites the config so teams can converge on one.
	if alreadyInitialized && c.preset == "" {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	cfg, err := resolvePreset(c.preset)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return err
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	if alreadyInitialized {
		fmt.Printf("Rewrote config: %s\n", cfger.GetTarget())
		return nil
	}

	fmt.Printf("Initialized .engram directory: %s\n", dir)
	return nil
}

// resolvePreset maps the --preset value to a Config. Empty means defaults,
// an http(s) value is fetched remotely, anything else is a named preset.
func resolvePreset(preset string) (*config.Config, error) {
	switch {
	case preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(preset, "http://"), strings.HasPrefix(preset, "https://"):
		return fetchRemoteConfig(preset)
	default:
		return config.PresetConfig(preset)
	}
}

// fetchRemoteConfig downloads and parses a config.toml from the given URL.
func fetchRemoteConfig(url string) (*config.Config, error) {
	resp, err := http.Get(url) //nolint:gosec,noctx // URL is user-supplied on purpose
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
