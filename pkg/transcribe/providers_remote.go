package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"os"
)

// groqProvider speaks Groq's OpenAI-compatible Whisper endpoint, first in
// the fallback chain for cost (§4.5: "$0.04/hr Groq").
type groqProvider struct {
	client *whisperClient
	model  string
}

func newGroqProvider(apiKey, model string) *groqProvider {
	return &groqProvider{
		model: model,
		client: newWhisperClient(
			"https://api.groq.com/openai/v1/audio/transcriptions",
			model,
			func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+apiKey) },
		),
	}
}

func (p *groqProvider) Name() string { return "groq" }
func (p *groqProvider) Model() string { return p.model }
func (p *groqProvider) Transcribe(ctx context.Context, audioPath, initialPrompt string) (string, []Segment, error) {
	return p.client.transcribe(ctx, audioPath, initialPrompt)
}

// azureProvider speaks an Azure OpenAI Whisper deployment, second in the
// fallback chain.
type azureProvider struct {
	client *whisperClient
	model  string
}

func newAzureProvider(endpoint, apiKey, apiVersion, deployment string) *azureProvider {
	url := fmt.Sprintf("%s/openai/deployments/%s/audio/transcriptions?api-version=%s", endpoint, deployment, apiVersion)
	return &azureProvider{
		model: deployment,
		client: newWhisperClient(
			url,
			deployment,
			func(req *http.Request) { req.Header.Set("api-key", apiKey) },
		),
	}
}

func (p *azureProvider) Name() string { return "azure" }
func (p *azureProvider) Model() string { return p.model }
func (p *azureProvider) Transcribe(ctx context.Context, audioPath, initialPrompt string) (string, []Segment, error) {
	return p.client.transcribe(ctx, audioPath, initialPrompt)
}

// openAIProvider speaks OpenAI's own Whisper endpoint, third in the
// fallback chain and the most commonly configured in practice.
type openAIProvider struct {
	client *whisperClient
	model  string
}

func newOpenAIProvider(apiKey, model string) *openAIProvider {
	return &openAIProvider{
		model: model,
		client: newWhisperClient(
			"https://api.openai.com/v1/audio/transcriptions",
			model,
			func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+apiKey) },
		),
	}
}

func (p *openAIProvider) Name() string { return "openai" }
func (p *openAIProvider) Model() string { return p.model }
func (p *openAIProvider) Transcribe(ctx context.Context, audioPath, initialPrompt string) (string, []Segment, error) {
	return p.client.transcribe(ctx, audioPath, initialPrompt)
}

// probeEnv returns the value of the named environment variable, or "" if
// the variable name itself is empty or unset.
func probeEnv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
