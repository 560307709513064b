package llm

import (
	"fmt"

	"github.com/scrypster/focusd/pkg/types"
)

// NewVisionCompleter creates the appropriate VisionCompleter for the
// configured provider. OpenAI-compatible custom endpoints use the openai
// provider with a non-default endpoint.
func NewVisionCompleter(settings types.TrackerSettings) (VisionCompleter, error) {
	switch settings.Provider {
	case "openai", "":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  settings.APIKey,
			Model:   settings.ModelName,
			BaseURL: settings.ModelEndpoint,
		}), nil
	case "ollama":
		return NewOllamaClient(OllamaConfig{
			BaseURL: settings.ModelEndpoint,
			Model:   settings.ModelName,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported vision provider: %q", settings.Provider)
	}
}
