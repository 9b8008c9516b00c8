// Package completion calls the external language model. A CallFunc makes a
// one-shot system+prompt call (extraction, briefings, explanations); a
// StreamFunc streams an assistant turn over a running transcript for chat.
// Providers: anthropic, openai, and a local ollama fallback.
package completion

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/quietmindco/engram/pkg/credentials"
	"github.com/quietmindco/engram/pkg/llm"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
)

const (
	callTimeout   = 30 * time.Second
	streamTimeout = 2 * time.Minute
)

// CallFunc is the signature for a one-shot LLM inference call.
type CallFunc func(ctx context.Context, system, prompt string) (string, error)

// StreamFunc streams one assistant turn over a transcript. Each text delta is
// handed to onDelta as it arrives; the returned response carries the full
// assembled message.
type StreamFunc func(ctx context.Context, system string, messages []llm.Message, onDelta func(text string)) (*llm.ChatResponse, error)

// Config holds configuration for creating a completion caller.
type Config struct {
	Provider string               // "anthropic", "openai", or "ollama"
	Model    string               // e.g. "claude-haiku-4-5-20251001", "gpt-4o-mini"
	APIKey   string               // explicit API key (highest priority)
	BaseURL  string               // override base URL
	JSON     bool                 // constrain responses to JSON where the provider supports it
	CredMgr  *credentials.Manager // keys stored by `engram auth`
}

// HasCredentials checks whether an API key can be resolved from the config
// without creating a caller. Used to auto-enable LLM extraction.
func HasCredentials(cfg Config) bool {
	if cfg.APIKey != "" {
		return true
	}
	provider := strings.ToLower(cfg.Provider)
	if provider == ProviderOllama {
		return true
	}
	if cfg.CredMgr != nil {
		if key := resolveAPIKeyFromCreds(cfg.CredMgr, provider); key != "" {
			return true
		}
	}
	if key := resolveAPIKeyFromEnv(provider); key != "" {
		return true
	}
	return false
}

// NewCaller creates a CallFunc based on the provided configuration.
// Resolution order for API key:
//  1. Explicit APIKey in config
//  2. credentials.Manager (from engram auth)
//  3. Environment variables (OPENAI_API_KEY / ANTHROPIC_API_KEY)
//  4. Fall back to Ollama at localhost:11434
func NewCaller(cfg Config) (CallFunc, error) {
	r, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	switch r.provider {
	case ProviderOpenAI:
		return newOpenAICaller(r, cfg.JSON), nil
	case ProviderAnthropic:
		return newAnthropicCaller(r, cfg.JSON), nil
	default:
		return newOllamaCaller(r, cfg.JSON), nil
	}
}

// NewStreamer creates a StreamFunc with the same provider and key resolution
// as NewCaller.
func NewStreamer(cfg Config) (StreamFunc, error) {
	r, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	switch r.provider {
	case ProviderOpenAI:
		return newOpenAIStreamer(r), nil
	case ProviderAnthropic:
		return newAnthropicStreamer(r), nil
	default:
		return newOllamaStreamer(r), nil
	}
}

// resolved is a provider choice with its key, model, and base URL filled in.
type resolved struct {
	provider string
	model    string
	apiKey   string
	baseURL  string
}

func resolve(cfg Config) (resolved, error) {
	provider := strings.ToLower(cfg.Provider)

	// Resolve API key: explicit > stored credentials > env vars
	apiKey := cfg.APIKey
	if apiKey == "" && cfg.CredMgr != nil {
		apiKey = resolveAPIKeyFromCreds(cfg.CredMgr, provider)
	}
	if apiKey == "" {
		apiKey = resolveAPIKeyFromEnv(provider)
	}

	// If no key found and provider is not explicitly ollama, fall back to ollama
	if apiKey == "" && provider != ProviderOllama {
		log.Printf("completion: no API key found for %s, falling back to ollama", provider)
		provider = ProviderOllama
	}

	switch provider {
	case ProviderOpenAI, "":
		r := resolved{provider: ProviderOpenAI, model: cfg.Model, apiKey: apiKey, baseURL: cfg.BaseURL}
		if r.model == "" {
			r.model = "gpt-4o-mini"
		}
		if r.baseURL == "" {
			r.baseURL = "https://api.openai.com"
		}
		return r, nil

	case ProviderAnthropic:
		r := resolved{provider: ProviderAnthropic, model: cfg.Model, apiKey: apiKey, baseURL: cfg.BaseURL}
		if r.model == "" {
			r.model = "claude-haiku-4-5-20251001"
		}
		if r.baseURL == "" {
			r.baseURL = "https://api.anthropic.com"
		}
		return r, nil

	case ProviderOllama:
		r := resolved{provider: ProviderOllama, model: cfg.Model, baseURL: cfg.BaseURL}
		if r.model == "" {
			r.model = "llama3.2"
		}
		if r.baseURL == "" {
			r.baseURL = "http://localhost:11434"
		}
		return r, nil

	default:
		return resolved{}, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

func resolveAPIKeyFromCreds(mgr *credentials.Manager, provider string) string {
	if mgr == nil {
		return ""
	}
	key, err := mgr.GetKey(provider)
	if err != nil || key != "" {
		return key
	}
	// If provider-specific key not found, try others
	if provider == ProviderOpenAI || provider == "" {
		if key, err = mgr.GetKey(ProviderAnthropic); err == nil && key != "" {
			return key
		}
	}
	if provider == ProviderAnthropic {
		if key, err = mgr.GetKey(ProviderOpenAI); err == nil && key != "" {
			return key
		}
	}
	return ""
}

func resolveAPIKeyFromEnv(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case ProviderOpenAI, "":
		return os.Getenv("OPENAI_API_KEY")
	default:
		// Try both
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("ANTHROPIC_API_KEY")
	}
}
