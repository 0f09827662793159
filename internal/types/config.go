package types

// AIConfig holds the language-model settings read from the `ai` mapping
// of the YAML config file.
type AIConfig struct {
	Endpoint     string  `yaml:"endpoint"`
	Model        string  `yaml:"model"`
	SystemPrompt string  `yaml:"system_prompt"`
	Temperature  float64 `yaml:"temperature"`
	APIKey       string  `yaml:"api_key"`
}
