package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sink names accepted in SINK.
const (
	SinkFile   = "file"
	SinkStdout = "stdout"
	SinkS3     = "s3"
	SinkSQLite = "sqlite"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	GitHubToken   string
	Owner         string
	GraphQLURL    string
	EnterpriseURL string

	PageSize            int
	LabelPageSize       int
	LabelsPageSize      int
	PageDelay           time.Duration
	WideningConcurrency int
	RequestTimeout      time.Duration

	IncludePrivate bool
	SkipInvalid    bool

	Sink        string
	OutputDir   string
	OutputName  string
	S3Bucket    string
	S3ObjectKey string
	AWSRegion   string
	HistoryDB   string

	CacheFile string
	NoCache   bool
	SlackMode bool
	DebugMode bool
	LogLevel  string
}

// FromEnvironment creates a Config from environment variables.
func FromEnvironment() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("GITHUB_GRAPHQL_URL", "https://api.github.com/graphql")
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("LABEL_PAGE_SIZE", 30)
	v.SetDefault("LABELS_PAGE_SIZE", 100)
	v.SetDefault("PAGE_DELAY", "5s")
	v.SetDefault("WIDENING_CONCURRENCY", 5)
	v.SetDefault("REQUEST_TIMEOUT", "60s")
	v.SetDefault("SINK", SinkFile)
	v.SetDefault("OUTPUT_DIR", ".")
	v.SetDefault("OUTPUT_NAME", "all-repos.json")
	v.SetDefault("HISTORY_DB", "history.db")
	v.SetDefault("CACHE_FILE", "/tmp/repometa-cache.gob")
	v.SetDefault("LOG_LEVEL", "info")

	return Config{
		GitHubToken:   v.GetString("GITHUB_TOKEN"),
		Owner:         v.GetString("GITHUB_OWNER"),
		GraphQLURL:    v.GetString("GITHUB_GRAPHQL_URL"),
		EnterpriseURL: v.GetString("GITHUB_ENTERPRISE_URL"),

		PageSize:            v.GetInt("PAGE_SIZE"),
		LabelPageSize:       v.GetInt("LABEL_PAGE_SIZE"),
		LabelsPageSize:      v.GetInt("LABELS_PAGE_SIZE"),
		PageDelay:           v.GetDuration("PAGE_DELAY"),
		WideningConcurrency: v.GetInt("WIDENING_CONCURRENCY"),
		RequestTimeout:      v.GetDuration("REQUEST_TIMEOUT"),

		IncludePrivate: flag(v, "INCLUDE_PRIVATE"),
		SkipInvalid:    flag(v, "SKIP_INVALID"),

		Sink:        strings.ToLower(v.GetString("SINK")),
		OutputDir:   v.GetString("OUTPUT_DIR"),
		OutputName:  v.GetString("OUTPUT_NAME"),
		S3Bucket:    v.GetString("S3_BUCKET_NAME"),
		S3ObjectKey: v.GetString("S3_OBJECT_KEY"),
		AWSRegion:   v.GetString("AWS_REGION"),
		HistoryDB:   v.GetString("HISTORY_DB"),

		CacheFile: v.GetString("CACHE_FILE"),
		SlackMode: flag(v, "SLACK_MODE"),
		DebugMode: flag(v, "DEBUG"),
		LogLevel:  v.GetString("LOG_LEVEL"),
	}
}

// flag treats any value other than empty, "false" or "0" as true.
func flag(v *viper.Viper, key string) bool {
	s := strings.TrimSpace(v.GetString(key))
	return s != "" && s != "0" && strings.ToLower(s) != "false"
}

// Validate reports settings that would make a collection run fail later.
func (c Config) Validate() error {
	switch c.Sink {
	case SinkFile, SinkStdout, SinkS3, SinkSQLite:
	default:
		return fmt.Errorf("unknown SINK %q (want file, stdout, s3 or sqlite)", c.Sink)
	}
	if c.Sink == SinkS3 && c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET_NAME environment variable must be set")
	}
	if c.PageDelay < 0 {
		return fmt.Errorf("PAGE_DELAY must not be negative, got %s", c.PageDelay)
	}
	return nil
}
