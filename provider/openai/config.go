package openai

// Config holds OpenAI provider initialization parameters.
type Config struct {
	// Model is the chat model identifier, e.g. "gpt-4o".
	Model string `json:"model" yaml:"model"`

	// BaseURL overrides the API endpoint for OpenAI-compatible servers
	// (vLLM, Ollama, llama.cpp). Empty uses the official endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`

	// Temperature applies when non-zero.
	Temperature float32 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// MaxTokens caps completion length when non-zero.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// DefaultConfig returns sensible defaults for the OpenAI provider.
func DefaultConfig() Config {
	return Config{
		Model:     "gpt-4o-mini",
		APIKeyEnv: "OPENAI_API_KEY",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKeyEnv != "" {
		c.APIKeyEnv = source.APIKeyEnv
	}
	if source.Temperature != 0 {
		c.Temperature = source.Temperature
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
}
