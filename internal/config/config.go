package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Image    ImageConfig    `mapstructure:"image"    validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig contains the filesystem locations the service works in.
type StorageConfig struct {
	// UploadDir is where uploaded job images are placed, one subdirectory
	// per job ID.
	UploadDir string `mapstructure:"upload_dir" validate:"required"`

	// OutputDir is where compiled documents, checkpoints, and generated
	// content are written, one subdirectory per job ID.
	OutputDir string `mapstructure:"output_dir" validate:"required"`

	// MaxUploadBytes bounds the total size of one upload request,
	// covering all files in the multipart form.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
}

// LLMConfig contains all inference service related settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`

	// PromptCharLimit bounds how much compiled text is embedded in a
	// content generation prompt.
	PromptCharLimit int `mapstructure:"prompt_char_limit" validate:"required,gt=0"`
}

// PipelineConfig contains background processing settings.
type PipelineConfig struct {
	// WorkerCount determines how many jobs may run concurrently.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`

	// QueueSize is the buffer size of the in-memory task queue.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// CheckpointEvery is the number of processed images between
	// results-so-far checkpoints.
	CheckpointEvery int `mapstructure:"checkpoint_every" validate:"required,gt=0"`
}

// ImageConfig contains image normalization settings.
type ImageConfig struct {
	// MaxEncodedBytes is the best-effort ceiling for an encoded payload.
	MaxEncodedBytes int `mapstructure:"max_encoded_bytes" validate:"required,gt=0"`

	// JPEGQuality is the encode quality (1-100).
	JPEGQuality int `mapstructure:"jpeg_quality" validate:"required,gte=1,lte=100"`

	// MaxDimension is the longer-side pixel bound applied by the single
	// rescale pass. Kept high so small text stays legible.
	MaxDimension int `mapstructure:"max_dimension" validate:"required,gt=0"`
}
