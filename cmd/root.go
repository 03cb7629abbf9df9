package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hh-interviewer/internal/events"
	"github.com/spigell/hh-interviewer/internal/ingest"
)

const (
	app       = "hh-interviewer"
	envPrefix = "HH_INTERVIEWER"
)

type Config struct {
	Database  string           `mapstructure:"database" validate:"required"`
	Index     *IndexConfig     `mapstructure:"index" validate:"required"`
	AI        *AIConfig        `mapstructure:"ai" validate:"required"`
	Ingest    *IngestConfig    `mapstructure:"ingest" validate:"required"`
	Interview *InterviewConfig `mapstructure:"interview"`
	Events    *EventsConfig    `mapstructure:"events"`
}

type IndexConfig struct {
	Backend     string `mapstructure:"backend" validate:"oneof=sqlite postgres"`
	PostgresURL string `mapstructure:"postgres-url" validate:"required_if=Backend postgres"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini" validate:"required"`
}

type GeminiConfig struct {
	APIKey         string        `mapstructure:"api-key" json:"-"`
	APIKeyFile     string        `mapstructure:"api-key-file"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding-model"`
	MaxRetries     int           `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxLogLength   int           `mapstructure:"max-log-length" validate:"gte=0"`
}

type IngestConfig struct {
	ChunkSize        int `mapstructure:"chunk-size" validate:"gt=0"`
	ChunkOverlap     int `mapstructure:"chunk-overlap" validate:"gte=0,ltfield=ChunkSize"`
	EmbedConcurrency int `mapstructure:"embed-concurrency" validate:"gte=1,lte=32"`
}

type InterviewConfig struct {
	// LadderFile replaces the built-in example question ladder.
	LadderFile string `mapstructure:"ladder-file" validate:"omitempty,file"`
}

type EventsConfig struct {
	NATSURL       string `mapstructure:"nats-url" validate:"omitempty,url"`
	SubjectPrefix string `mapstructure:"subject-prefix"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "hh-interviewer runs mock technical interviews grounded in your résumé",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Execute executes the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-output", "stderr", "where to write logs (stdout, stderr or a file path)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-output", rootCmd.PersistentFlags().Lookup("log-output"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database", app+".db")
	v.SetDefault("index.backend", "sqlite")
	v.SetDefault("index.postgres-url", "")
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.embedding-model", "text-embedding-004")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.timeout", "60s")
	v.SetDefault("ai.gemini.max-log-length", 400)
	v.SetDefault("ingest.chunk-size", ingest.DefaultChunkSize)
	v.SetDefault("ingest.chunk-overlap", ingest.DefaultChunkOverlap)
	v.SetDefault("ingest.embed-concurrency", ingest.DefaultEmbedConcurrency)
	v.SetDefault("interview.ladder-file", "")
	v.SetDefault("events.nats-url", "")
	v.SetDefault("events.subject-prefix", events.DefaultSubjectPrefix)
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig layers defaults, the optional config file and HH_INTERVIEWER_*
// environment variables. An explicitly requested file must exist.
func readConfig(v *viper.Viper, file string) error {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// redacted returns a copy of the config that is safe to log: connection URLs
// lose their passwords and unparseable DSNs are hidden entirely.
func (c Config) redacted() Config {
	out := c
	if c.Index != nil {
		index := *c.Index
		index.PostgresURL = redactURL(index.PostgresURL)
		out.Index = &index
	}
	if c.Events != nil {
		events := *c.Events
		events.NATSURL = redactURL(events.NATSURL)
		out.Events = &events
	}
	return out
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "[redacted]"
	}
	if u.User != nil {
		if _, ok := u.User.Password(); !ok {
			u.User = url.User("xxxxx")
		}
	}
	// Query parameters such as sslpassword may carry secrets too.
	u.RawQuery = ""
	return u.Redacted()
}
