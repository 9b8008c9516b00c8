// Package llmconf maps the engram config file onto completion configs for
// commands that talk to a language model.
package llmconf

import (
	"github.com/quietmindco/engram/pkg/completion"
	"github.com/quietmindco/engram/pkg/config"
	"github.com/quietmindco/engram/pkg/credentials"
)

// Completion builds a caller config from the [completion] section.
// Credentials stored by 'engram auth' are attached when the manager
// resolves; env vars and the Ollama fallback still apply without one.
func Completion(cfg *config.Config, configDir string) completion.Config {
	ccfg := completion.Config{
		Provider: cfg.Completion.Provider,
		Model:    cfg.Completion.Model,
		BaseURL:  cfg.Completion.Target,
	}

	if mgr, err := credentials.NewManager(configDir); err == nil {
		ccfg.CredMgr = mgr
	}

	return ccfg
}
