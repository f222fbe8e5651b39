package transcribe

import "github.com/canaryscope/canaryscope/pkg/config"

// ratePerMinute maps a provider name to its per-minute USD cost (§4.5:
// "$0.006/min OpenAI/Azure, $0.04/hr Groq").
var ratePerMinute = map[string]float64{
	"openai": 0.006,
	"azure":  0.006,
	"groq":   0.04 / 60,
	"local":  0,
}

// selectProvider probes the provider config in priority order {Groq, Azure
// OpenAI, OpenAI, local} and returns the first one with credentials
// present, chosen once at construction and transparent to callers
// thereafter (§4.5).
func selectProvider(cfg *config.ProvidersConfig) Provider {
	if cfg.UseLocalWhisper {
		return newLocalProvider(cfg.LocalWhisperModel)
	}
	if key := probeEnv(cfg.GroqAPIKeyEnv); key != "" {
		return newGroqProvider(key, cfg.GroqWhisperModel)
	}
	if endpoint, key := probeEnv(cfg.AzureOpenAIEndpointEnv), probeEnv(cfg.AzureOpenAIAPIKeyEnv); endpoint != "" && key != "" {
		apiVersion := probeEnv(cfg.AzureOpenAIAPIVersionEnv)
		if apiVersion == "" {
			apiVersion = "2024-02-01"
		}
		return newAzureProvider(endpoint, key, apiVersion, cfg.AzureWhisperDeployment)
	}
	if key := probeEnv(cfg.OpenAIAPIKeyEnv); key != "" {
		return newOpenAIProvider(key, cfg.WhisperModel)
	}
	return newLocalProvider(cfg.LocalWhisperModel)
}
