package config

import (
	"github.com/oneboxhq/onebox/internal/logger"
	"github.com/oneboxhq/onebox/internal/tracing"
)

type AppConfig struct {
	APIPort string `env:"PORT" envDefault:"5001"`
}

type MailboxConfig struct {
	ImapHost     string `env:"IMAP_HOST,required"`
	ImapPort     int    `env:"IMAP_PORT" envDefault:"993"`
	ImapUsername string `env:"EMAIL_USERNAME,required"`
	ImapPassword string `env:"EMAIL_PASSWORD,required"`
	ImapSecurity string `env:"IMAP_SECURITY" envDefault:"tls"`
	// ImapTLSSkipVerify disables certificate verification. Testing only.
	ImapTLSSkipVerify bool   `env:"IMAP_TLS_SKIP_VERIFY" envDefault:"false"`
	Folder            string `env:"IMAP_FOLDER" envDefault:"INBOX"`
	PollInterval      string `env:"POLL_INTERVAL" envDefault:"5m"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST,required"`
	Port int    `env:"SMTP_PORT" envDefault:"587"`
	// DefaultRecipient receives generated replies when the request does not
	// reference a stored email to resolve the original sender from.
	DefaultRecipient string `env:"REPLY_DEFAULT_RECIPIENT"`
	FromDomain       string `env:"SMTP_FROM_DOMAIN"`
}

type OpenAIConfig struct {
	APIKey    string `env:"OPENAI_API_KEY,required"`
	Model     string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	MaxTokens int    `env:"OPENAI_MAX_TOKENS" envDefault:"200"`
	BaseURL   string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
}

type DatabaseConfig struct {
	Host            string `env:"POSTGRES_HOST,required"`
	Port            string `env:"POSTGRES_PORT,required"`
	User            string `env:"POSTGRES_USER,required"`
	DBName          string `env:"POSTGRES_DB_NAME,required"`
	Password        string `env:"POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
}

type Config struct {
	AppConfig      *AppConfig
	MailboxConfig  *MailboxConfig
	SMTPConfig     *SMTPConfig
	OpenAIConfig   *OpenAIConfig
	DatabaseConfig *DatabaseConfig
	Logger         *logger.Config
	Tracing        *tracing.JaegerConfig
}
