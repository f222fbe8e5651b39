package config

// TranscriptionProviderType enumerates the Whisper-family speech-to-text
// backends tried in priority order by the Transcriber (§4.5).
type TranscriptionProviderType string

const (
	TranscriptionProviderGroq   TranscriptionProviderType = "groq"
	TranscriptionProviderAzure  TranscriptionProviderType = "azure"
	TranscriptionProviderOpenAI TranscriptionProviderType = "openai"
	TranscriptionProviderLocal  TranscriptionProviderType = "local"
)

// ProvidersConfig holds transcription/analysis provider credentials and
// model names, grounded on the teacher's llm-providers.yaml shape but
// carrying the env-var-name fields §6.5 enumerates directly rather than a
// registry of named providers — CanaryScope has one active provider chain
// per capability, not many interchangeable named providers per chain.
type ProvidersConfig struct {
	// Groq credentials, first in the transcription fallback chain.
	GroqAPIKeyEnv      string `yaml:"groq_api_key_env"`
	GroqWhisperModel   string `yaml:"groq_whisper_model"`

	// Azure OpenAI credentials, second in the transcription fallback chain.
	AzureOpenAIEndpointEnv   string `yaml:"azure_openai_endpoint_env"`
	AzureOpenAIAPIKeyEnv     string `yaml:"azure_openai_api_key_env"`
	AzureOpenAIAPIVersionEnv string `yaml:"azure_openai_api_version_env"`
	AzureWhisperDeployment   string `yaml:"azure_whisper_deployment"`
	AzureAnalysisDeployment  string `yaml:"azure_analysis_deployment"`

	// OpenAI credentials, third in the transcription fallback chain and the
	// default analysis backend.
	OpenAIAPIKeyEnv string `yaml:"openai_api_key_env"`
	WhisperModel    string `yaml:"whisper_model"`
	AnalysisModel   string `yaml:"analysis_model"`
	LLMPolishModel  string `yaml:"llm_polish_model"`

	// Local whisper fallback, used when no remote credential is configured.
	UseLocalWhisper bool   `yaml:"use_local_whisper"`
	LocalWhisperModel string `yaml:"local_whisper_model"`

	// StorageDir is AUDIO_DIR — the media cache root (§6.4).
	StorageDir string `yaml:"storage_dir"`

	// GenerateEmbeddings mirrors GENERATE_EMBEDDINGS (§6.5, §9 open question):
	// gates an embeddings pass that, per the reference, stores nothing
	// persistent. Carried as a feature flag for forward compatibility.
	GenerateEmbeddings bool `yaml:"generate_embeddings"`
}

// DefaultProvidersConfig returns the built-in provider defaults. Credentials
// are always read from environment variables named here, never embedded in
// YAML, consistent with §6.5's "DB URL / API key" environment contract.
func DefaultProvidersConfig() *ProvidersConfig {
	return &ProvidersConfig{
		GroqAPIKeyEnv:            "GROQ_API_KEY",
		GroqWhisperModel:         "whisper-large-v3",
		AzureOpenAIEndpointEnv:   "AZURE_OPENAI_ENDPOINT",
		AzureOpenAIAPIKeyEnv:     "AZURE_OPENAI_API_KEY",
		AzureOpenAIAPIVersionEnv: "AZURE_OPENAI_API_VERSION",
		AzureWhisperDeployment:   "whisper",
		AzureAnalysisDeployment:  "gpt-4o",
		OpenAIAPIKeyEnv:          "OPENAI_API_KEY",
		WhisperModel:             "whisper-1",
		AnalysisModel:            "gpt-4o",
		LLMPolishModel:           "gpt-4o-mini",
		UseLocalWhisper:          false,
		LocalWhisperModel:        "base",
		StorageDir:               "./data/audio",
		GenerateEmbeddings:       false,
	}
}
