package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket"`
	AudioBucketName string `mapstructure:"audio_bucket"`
}

type OpenAIConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	Model       string `mapstructure:"model"`
	SpeechModel string `mapstructure:"speech_model"`
}

// ExtractorConfig points at the external text-extraction HTTP service,
// e.g. Endpoint = http://extractor:8868/extract
type ExtractorConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	TimeoutSecond int    `mapstructure:"timeout"`
}

// Kafka is optional; the event publisher is disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers       string `mapstructure:"brokers"`
	MaterialTopic string `mapstructure:"material_topic"`
	ArtifactTopic string `mapstructure:"artifact_topic"`
}

type MetricsConfig struct {
	Port string `mapstructure:"port"`
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{}

	viper.SetDefault("http.port", "8080")
	viper.SetDefault("metrics.port", "2112")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("minio.bucket", "studyloft-materials")
	viper.SetDefault("minio.audio_bucket", "studyloft-audio")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.speech_model", "tts-1")
	viper.SetDefault("extractor.timeout", 60)
	viper.SetDefault("kafka.material_topic", "studyloft.material.events")
	viper.SetDefault("kafka.artifact_topic", "studyloft.artifact.events")

	viper.AutomaticEnv()

	viper.BindEnv("http.port", "HTTP_PORT")
	viper.BindEnv("metrics.port", "METRICS_PORT")
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")
	viper.BindEnv("database.sslmode", "DB_SSLMODE")
	viper.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("minio.use_ssl", "MINIO_USE_SSL")
	viper.BindEnv("minio.bucket", "MINIO_BUCKET_NAME")
	viper.BindEnv("minio.audio_bucket", "MINIO_AUDIO_BUCKET_NAME")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	viper.BindEnv("openai.model", "OPENAI_MODEL")
	viper.BindEnv("openai.speech_model", "OPENAI_SPEECH_MODEL")
	viper.BindEnv("extractor.endpoint", "EXTRACTOR_ENDPOINT")
	viper.BindEnv("extractor.timeout", "EXTRACTOR_TIMEOUT")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("kafka.material_topic", "KAFKA_TOPIC_MATERIAL_EVENTS")
	viper.BindEnv("kafka.artifact_topic", "KAFKA_TOPIC_ARTIFACT_EVENTS")

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %v", err)
	}

	if config.OpenAI.APIKey == "" {
		log.Println("Warning: OpenAI API key not configured")
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
