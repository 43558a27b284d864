package config

import (
	"os"
	"strings"

	"github.com/spacesedan/trendeval/internal/experts"
)

// Config is the environment-derived configuration of a run. CLI flags
// override the experiment fields.
type Config struct {
	Env            string
	ExperimentsDir string
	LogLevel       string
	ResultSinks    []string

	Valkey ValkeyConfig
	AWS    AWSConfig
	Kafka  KafkaConfig
}

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
}

type AWSConfig struct {
	Endpoint  string
	Region    string
	TableName string
}

type KafkaConfig struct {
	Broker string
	Topic  string
}

// AppEnv returns APP_ENV, defaulting to dev.
func AppEnv() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	return env
}

// Load reads the configuration from the process environment. Call LoadEnv
// first to pick up dotenv files.
func Load() Config {
	return Config{
		Env:            AppEnv(),
		ExperimentsDir: getEnv("EXPERIMENTS_DIR", experts.DefaultExperimentsPath),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ResultSinks:    splitList(os.Getenv("RESULT_SINKS")),
		Valkey: ValkeyConfig{
			Address:  os.Getenv("VALKEY_INIT_ADDRESS"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			TLS:      os.Getenv("VALKEY_TLS") == "true",
		},
		AWS: AWSConfig{
			Endpoint:  os.Getenv("AWS_ENDPOINT"),
			Region:    getEnv("AWS_REGION", "us-west-2"),
			TableName: getEnv("EVALUATION_TABLE_NAME", "EvaluationResults"),
		},
		Kafka: KafkaConfig{
			Broker: getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:  getEnv("KAFKA_TOPIC_EVALUATIONS", "evaluation-results"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
