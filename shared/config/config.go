package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	LogLevel      string        `yaml:"log_level"`
	LogJSON       bool          `yaml:"log_json"`
	JwtTTL        time.Duration `yaml:"jwt_ttl"`
	Http          Http          `yaml:"http"`
	Feed          Feed          `yaml:"feed"`
	Aggregation   Aggregation   `yaml:"aggregation"`
	Generation    Generation    `yaml:"generation"`
	Notifications Notifications `yaml:"notifications"`
}

type Http struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SecureCookies  bool     `yaml:"secure_cookies"`
}

type Feed struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	CandidateLimit  int `yaml:"candidate_limit"` // ranking window: most recently active threads considered per pass; Total counts within it
}

type Aggregation struct {
	MaxTokens        int `yaml:"max_tokens"`
	ClubThreadLimit  int `yaml:"club_thread_limit"`
	ClubCommentLimit int `yaml:"club_comment_limit"`
	MediaClubLimit   int `yaml:"media_club_limit"`
	MediaThreadLimit int `yaml:"media_thread_limit"`
	CommentMaxLength int `yaml:"comment_max_length"`
	HistoryPageLimit int `yaml:"history_page_limit"`
}

type Generation struct {
	Provider           string        `yaml:"provider"` // openai | gemini
	Model              string        `yaml:"model"`
	BaseURL            string        `yaml:"base_url"`
	Timeout            time.Duration `yaml:"timeout"`      // covers all attempts combined
	MaxAttempts        int           `yaml:"max_attempts"` // including the first one
	BackoffUnit        time.Duration `yaml:"backoff_unit"` // attempt k waits k*BackoffUnit
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	CacheSweepInterval time.Duration `yaml:"cache_sweep_interval"`
}

type Notifications struct {
	BufferSize int `yaml:"buffer_size"`
}

type Private struct {
	Pg        Pg     `yaml:"pg"`
	JwtKey    string `yaml:"jwt_key"`
	LLMApiKey string `yaml:"llm_api_key"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err = yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

// Default returns a config with every tunable at its default value.
// Used by tests and as the base for MustLoad.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (s *Config) applyDefaults() {
	p := &s.Public
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.JwtTTL == 0 {
		p.JwtTTL = 24 * time.Hour
	}
	if p.Http.Port == 0 {
		p.Http.Port = 8080
	}
	if p.Feed.DefaultPageSize == 0 {
		p.Feed.DefaultPageSize = 20
	}
	if p.Feed.MaxPageSize == 0 {
		p.Feed.MaxPageSize = 100
	}
	if p.Feed.CandidateLimit == 0 {
		p.Feed.CandidateLimit = 5000
	}
	if p.Aggregation.MaxTokens == 0 {
		p.Aggregation.MaxTokens = 200
	}
	if p.Aggregation.ClubThreadLimit == 0 {
		p.Aggregation.ClubThreadLimit = 10
	}
	if p.Aggregation.ClubCommentLimit == 0 {
		p.Aggregation.ClubCommentLimit = 3
	}
	if p.Aggregation.MediaClubLimit == 0 {
		p.Aggregation.MediaClubLimit = 5
	}
	if p.Aggregation.MediaThreadLimit == 0 {
		p.Aggregation.MediaThreadLimit = 3
	}
	if p.Aggregation.CommentMaxLength == 0 {
		p.Aggregation.CommentMaxLength = 10000
	}
	if p.Aggregation.HistoryPageLimit == 0 {
		p.Aggregation.HistoryPageLimit = 50
	}
	if p.Generation.Provider == "" {
		p.Generation.Provider = "openai"
	}
	if p.Generation.Timeout == 0 {
		p.Generation.Timeout = 30 * time.Second
	}
	if p.Generation.MaxAttempts == 0 {
		p.Generation.MaxAttempts = 3
	}
	if p.Generation.BackoffUnit == 0 {
		p.Generation.BackoffUnit = time.Second
	}
	if p.Generation.CacheTTL == 0 {
		p.Generation.CacheTTL = 7 * 24 * time.Hour
	}
	if p.Generation.CacheSweepInterval == 0 {
		p.Generation.CacheSweepInterval = time.Hour
	}
	if p.Notifications.BufferSize == 0 {
		p.Notifications.BufferSize = 16
	}
}

func (s *Config) validate() error {
	if s.Private.JwtKey == "" {
		return fmt.Errorf("config: jwt_key is required")
	}
	if s.Public.Feed.DefaultPageSize > s.Public.Feed.MaxPageSize {
		return fmt.Errorf("config: feed.default_page_size (%d) exceeds feed.max_page_size (%d)",
			s.Public.Feed.DefaultPageSize, s.Public.Feed.MaxPageSize)
	}
	switch s.Public.Generation.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("config: unknown generation.provider %q (valid: openai, gemini)", s.Public.Generation.Provider)
	}
	return nil
}
