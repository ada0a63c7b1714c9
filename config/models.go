package config

// Config holds the configuration of the application
// Use LoadConfig to create a validated instance
type Config struct {
	Model      ModelConfig      `mapstructure:"model" json:"model" yaml:"model"`
	Clustering ClusteringConfig `mapstructure:"clustering" json:"clustering" yaml:"clustering"`
	Encoder    EncoderConfig    `mapstructure:"encoder" json:"encoder" yaml:"encoder"`
	Data       DataConfig       `mapstructure:"data" json:"data" yaml:"data"`
	Log        LogConfig        `mapstructure:"log" json:"log" yaml:"log"`
}

type ModelConfig struct {
	// Name identifies the embedding model. The same model encodes both the
	// product and the customer texts within a run.
	Name string `mapstructure:"name" json:"name" yaml:"name" validate:"required"`
}

type ClusteringConfig struct {
	// K is reserved for a kNN-pruned graph builder and is currently unused
	// by the direct pairwise path.
	K     int     `mapstructure:"k"     json:"k"     yaml:"k"     validate:"gt=0"`
	Tau   float64 `mapstructure:"tau"   json:"tau"   yaml:"tau"   validate:"gte=0,lte=1"`
	Alpha float64 `mapstructure:"alpha" json:"alpha" yaml:"alpha" validate:"gte=0,lte=1"`
	Seed  int64   `mapstructure:"seed"  json:"seed"  yaml:"seed"  validate:"gte=0"`
	// NSamples caps how many clusters are drawn for validation sampling.
	NSamples int `mapstructure:"n_samples" json:"n_samples" yaml:"n_samples" validate:"gt=0"`
	// GraphBlockSize bounds peak memory during pairwise similarity. It never
	// changes the resulting graph.
	GraphBlockSize int `mapstructure:"graph_block_size" json:"graph_block_size" yaml:"graph_block_size" validate:"gt=0"`
}

type EncoderConfig struct {
	Provider  string `mapstructure:"provider"   json:"provider"   yaml:"provider"   validate:"oneof=local openai hash"`
	BatchSize int    `mapstructure:"batch_size" json:"batch_size" yaml:"batch_size" validate:"gt=0"`
	// CachePath enables a persistent on-disk embedding cache when set.
	CachePath string              `mapstructure:"cache_path" json:"cache_path,omitempty" yaml:"cache_path,omitempty"`
	Local     LocalEncoderConfig  `mapstructure:"local"  json:"local"  yaml:"local"`
	OpenAI    OpenAIEncoderConfig `mapstructure:"openai" json:"openai" yaml:"openai"`
}

type LocalEncoderConfig struct {
	ServerURL      string `mapstructure:"server_url" json:"server_url" yaml:"server_url" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds" validate:"gt=0"`
}

type OpenAIEncoderConfig struct {
	Endpoint string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint" validate:"required"`
	// APIKey is loaded from ENV not config file, and never serialized.
	APIKey           string `mapstructure:"api_key" json:"-" yaml:"-"`
	OrgID            string `mapstructure:"org_id" json:"org_id,omitempty" yaml:"org_id,omitempty"`
	MaxRequestTokens int    `mapstructure:"max_request_tokens" json:"max_request_tokens" yaml:"max_request_tokens" validate:"gt=0"`
}

type DataConfig struct {
	InputPath string `mapstructure:"input_path" json:"input_path" yaml:"input_path" validate:"required"`
	OutputDir string `mapstructure:"output_dir" json:"output_dir" yaml:"output_dir" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"  json:"level"  yaml:"level"  validate:"oneof=panic fatal error warn info debug trace"`
	Format string `mapstructure:"format" json:"format" yaml:"format" validate:"oneof=text json"`
}
