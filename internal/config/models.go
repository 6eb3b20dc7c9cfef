package config

import "time"

// ModelConfig selects and tunes the classifier
type ModelConfig struct {
	Type                string
	Path                string
	ConfidenceThreshold float64
	SeedDefaultCorpus   bool
	MaxExamples         int
}

// StorageConfig represents the configuration for corpus, lexicon and spam log storage
type StorageConfig struct {
	Type        string
	LexiconPath string
	CorpusPath  string
	SpamLogPath string
	SQLitePath  string
	MySQLDSN    string
}

// LexiconConfig selects where lexicon terms live
type LexiconConfig struct {
	Type        string
	RedisURL    string
	RedisPrefix string
}

// HeaderConfig names the headers added by the SMTP filter
type HeaderConfig struct {
	Spam        string
	Score       string
	Probability string
	Terms       string
	CheckID     string
}

// PostfixConfig is where filtered mail is reinjected
type PostfixConfig struct {
	Enabled bool
	Address string
	Port    int
}

// ServerConfig represents the configuration for the SMTP content filter
type ServerConfig struct {
	ListenAddress      string
	BlockSpam          bool
	ModifySubject      bool
	SubjectPrefix      string
	Headers            HeaderConfig
	Postfix            PostfixConfig
	CheckTimeout       time.Duration
	WhitelistedDomains []string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GetModel returns the classifier configuration
func (c *Config) GetModel() ModelConfig {
	return ModelConfig{
		Type:                c.GetString("model.type"),
		Path:                c.GetString("model.path"),
		ConfidenceThreshold: c.GetFloat64("model.confidence_threshold"),
		SeedDefaultCorpus:   c.GetBool("model.seed_default_corpus"),
		MaxExamples:         c.GetInt("model.max_examples"),
	}
}

// GetStorage returns the storage configuration
func (c *Config) GetStorage() StorageConfig {
	return StorageConfig{
		Type:        c.GetString("storage.type"),
		LexiconPath: c.GetString("storage.lexicon_path"),
		CorpusPath:  c.GetString("storage.corpus_path"),
		SpamLogPath: c.GetString("storage.spam_log_path"),
		SQLitePath:  c.GetString("storage.sqlite_path"),
		MySQLDSN:    c.GetString("storage.mysql_dsn"),
	}
}

// GetLexicon returns the lexicon backend configuration
func (c *Config) GetLexicon() LexiconConfig {
	return LexiconConfig{
		Type:        c.GetString("lexicon.type"),
		RedisURL:    c.GetString("lexicon.redis_url"),
		RedisPrefix: c.GetString("lexicon.redis_prefix"),
	}
}

// GetFilterItems returns the extra terms matched on every check
func (c *Config) GetFilterItems() []string {
	return c.GetStringSlice("detector.filter_items")
}

// GetServer returns the SMTP filter configuration. An unparsable check
// timeout falls back to ten seconds.
func (c *Config) GetServer() ServerConfig {
	timeout, err := c.GetDuration("server.check_timeout")
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		BlockSpam:     c.GetBool("server.block_spam"),
		ModifySubject: c.GetBool("server.modify_subject"),
		SubjectPrefix: c.GetString("server.subject_prefix"),
		Headers: HeaderConfig{
			Spam:        c.GetString("server.headers.spam"),
			Score:       c.GetString("server.headers.score"),
			Probability: c.GetString("server.headers.probability"),
			Terms:       c.GetString("server.headers.terms"),
			CheckID:     c.GetString("server.headers.check_id"),
		},
		Postfix: PostfixConfig{
			Enabled: c.GetBool("server.postfix.enabled"),
			Address: c.GetString("server.postfix.address"),
			Port:    c.GetInt("server.postfix.port"),
		},
		CheckTimeout:       timeout,
		WhitelistedDomains: c.GetStringSlice("spam.whitelisted_domains"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}
