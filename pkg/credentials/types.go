package credentials

// Credentials is the on-disk shape of credentials.toml, keyed by
// completion/embedding provider name.
type Credentials struct {
	Version   int                           `toml:"version"`
	Providers map[string]ProviderCredential `toml:"providers"`
}

// ProviderCredential holds the API key for one provider.
type ProviderCredential struct {
	APIKey string `toml:"api_key"`
}
