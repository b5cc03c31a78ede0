package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Kafka     KafkaConfig
	SMTP      SMTPConfig
	Scheduler SchedulerConfig
	JWT       JWTConfig
}

type ServerConfig struct {
	Port        string
	Environment string
	Version     string
}

type MongoDBConfig struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	MinPoolSize uint64
	MaxRetries  int
}

type KafkaConfig struct {
	Brokers         []string
	ProducerTimeout int
	ClientID        string
	Username        string
	Password        string
	SSL             bool
	SASLMechanism   string
	Topics          KafkaTopics
}

type KafkaTopics struct {
	AuditEvents  string
	ReminderSent string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromEmail  string
	ReplyTo    string
	TLSEnabled bool
}

// SchedulerConfig carries the fixed business timezone used to interpret
// "tomorrow" for reminder dispatch, plus the bearer token the external
// scheduler must present. The offset is explicit configuration, never the
// host's local zone.
type SchedulerConfig struct {
	TimezoneName      string // display name, e.g. "IST"
	UTCOffsetMinutes  int    // e.g. 330 for UTC+05:30
	JobToken          string // bearer token for POST /api/v1/jobs/reminders
	NotifyTimeoutSecs int    // per-candidate notification timeout
}

type JWTConfig struct {
	PrivateKeyPath     string
	PublicKeyPath      string
	AccessTokenExpiry  int // in minutes
	RefreshTokenExpiry int // in days
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	setDefaults()

	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/sales-tracker")

	// Reading config file is optional
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config

	config.Server = ServerConfig{
		Port:        viper.GetString("server.port"),
		Environment: viper.GetString("server.environment"),
		Version:     viper.GetString("server.version"),
	}

	config.MongoDB = MongoDBConfig{
		URI:         viper.GetString("mongodb.uri"),
		Database:    viper.GetString("mongodb.database"),
		MaxPoolSize: viper.GetUint64("mongodb.max_pool_size"),
		MinPoolSize: viper.GetUint64("mongodb.min_pool_size"),
		MaxRetries:  viper.GetInt("mongodb.max_retries"),
	}

	config.Kafka = KafkaConfig{
		Brokers:         viper.GetStringSlice("kafka.brokers"),
		ProducerTimeout: viper.GetInt("kafka.producer_timeout"),
		ClientID:        viper.GetString("kafka.client_id"),
		Username:        viper.GetString("kafka.username"),
		Password:        viper.GetString("kafka.password"),
		SSL:             viper.GetBool("kafka.ssl"),
		SASLMechanism:   viper.GetString("kafka.sasl_mechanism"),
		Topics: KafkaTopics{
			AuditEvents:  viper.GetString("kafka.topics.audit_events"),
			ReminderSent: viper.GetString("kafka.topics.reminder_sent"),
		},
	}

	config.SMTP = SMTPConfig{
		Host:       viper.GetString("smtp.host"),
		Port:       viper.GetInt("smtp.port"),
		Username:   viper.GetString("smtp.username"),
		Password:   viper.GetString("smtp.password"),
		FromEmail:  viper.GetString("smtp.from_email"),
		ReplyTo:    viper.GetString("smtp.reply_to"),
		TLSEnabled: viper.GetBool("smtp.tls_enabled"),
	}

	config.Scheduler = SchedulerConfig{
		TimezoneName:      viper.GetString("scheduler.timezone_name"),
		UTCOffsetMinutes:  viper.GetInt("scheduler.utc_offset_minutes"),
		JobToken:          viper.GetString("scheduler.job_token"),
		NotifyTimeoutSecs: viper.GetInt("scheduler.notify_timeout_seconds"),
	}

	config.JWT = JWTConfig{
		PrivateKeyPath:     viper.GetString("jwt.private_key_path"),
		PublicKeyPath:      viper.GetString("jwt.public_key_path"),
		AccessTokenExpiry:  viper.GetInt("jwt.access_token_expiry"),
		RefreshTokenExpiry: viper.GetInt("jwt.refresh_token_expiry"),
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.version", "1.0.0")

	// MongoDB defaults
	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "sales_tracker_db")
	viper.SetDefault("mongodb.max_pool_size", 100)
	viper.SetDefault("mongodb.min_pool_size", 10)
	viper.SetDefault("mongodb.max_retries", 5)

	// Kafka defaults
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.producer_timeout", 5000)
	viper.SetDefault("kafka.client_id", "sales-tracker-producer")
	viper.SetDefault("kafka.username", "")
	viper.SetDefault("kafka.password", "")
	viper.SetDefault("kafka.ssl", false)
	viper.SetDefault("kafka.sasl_mechanism", "plain")

	// Kafka topic defaults
	viper.SetDefault("kafka.topics.audit_events", "audit.events")
	viper.SetDefault("kafka.topics.reminder_sent", "reminders.sent")

	// SMTP defaults
	viper.SetDefault("smtp.host", "")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.tls_enabled", true)

	// Scheduler defaults: business day is India Standard Time (UTC+05:30)
	viper.SetDefault("scheduler.timezone_name", "IST")
	viper.SetDefault("scheduler.utc_offset_minutes", 330)
	viper.SetDefault("scheduler.job_token", "")
	viper.SetDefault("scheduler.notify_timeout_seconds", 30)

	// JWT defaults
	viper.SetDefault("jwt.private_key_path", "./secrets/jwt/private.pem")
	viper.SetDefault("jwt.public_key_path", "./secrets/jwt/public.pem")
	viper.SetDefault("jwt.access_token_expiry", 15) // 15 minutes
	viper.SetDefault("jwt.refresh_token_expiry", 7) // 7 days
}
