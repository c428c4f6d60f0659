package models

// Config holds the application configuration
type Config struct {
	Discord      DiscordConfig     `json:"discord" yaml:"discord"`
	Destinations []Destination     `json:"destinations" yaml:"destinations" validate:"required,min=1,dive"`
	Permissions  PermissionsConfig `json:"permissions" yaml:"permissions"`
	Relay        RelayConfig       `json:"relay" yaml:"relay"`
	Media        MediaConfig       `json:"media" yaml:"media"`
	Ingress      IngressConfig     `json:"ingress" yaml:"ingress"`
	Server       ServerConfig      `json:"server" yaml:"server"`
	Tracing      TracingConfig     `json:"tracing" yaml:"tracing"`
	LogLevel     string            `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat    string            `json:"log_format" yaml:"log_format" validate:"omitempty,oneof=json text"`
}

// DiscordConfig holds the bot connection settings
type DiscordConfig struct {
	Token         string `json:"token" yaml:"token" validate:"required"`
	CommandPrefix string `json:"command_prefix" yaml:"command_prefix" validate:"required"`
}

// Destination is a public channel with an optional admin mirror.
// Name is the logical identifier used by commands and ingress routes.
type Destination struct {
	Name           string `json:"name" yaml:"name" validate:"required"`
	ChannelID      string `json:"channel_id" yaml:"channel_id" validate:"required,numeric"`
	AdminChannelID string `json:"admin_channel_id" yaml:"admin_channel_id" validate:"omitempty,numeric"`
}

// HasMirror reports whether an admin channel is configured
func (d Destination) HasMirror() bool {
	return d.AdminChannelID != ""
}

// PermissionsConfig is the allow-list consulted by the permission gate
type PermissionsConfig struct {
	RoleIDs []string `json:"role_ids" yaml:"role_ids" validate:"dive,numeric"`
	UserID  string   `json:"user_id" yaml:"user_id" validate:"omitempty,numeric"`
}

// RelayConfig controls the relay lifecycle
type RelayConfig struct {
	CleanupDelayMs int    `json:"cleanup_delay_ms" yaml:"cleanup_delay_ms" validate:"gte=0"`
	AckMessage     string `json:"ack_message" yaml:"ack_message"`
	SendTimeoutSec int    `json:"send_timeout_sec" yaml:"send_timeout_sec" validate:"gte=0"`
}

// MediaConfig holds image fetch limits
type MediaConfig struct {
	MaxImageBytes     int64 `json:"max_image_bytes" yaml:"max_image_bytes" validate:"gte=0"`
	FetchTimeoutSec   int   `json:"fetch_timeout_sec" yaml:"fetch_timeout_sec" validate:"gte=0"`
	AllowPrivateHosts bool  `json:"allow_private_hosts" yaml:"allow_private_hosts"`
}

// IngressConfig configures the HTTP push endpoint
type IngressConfig struct {
	Routes         map[string]string `json:"routes" yaml:"routes"`
	DefaultChannel string            `json:"default_channel" yaml:"default_channel"`
	AuthorName     string            `json:"author_name" yaml:"author_name"`
	Secret         string            `json:"secret" yaml:"secret"`
	MaxBodyBytes   int64             `json:"max_body_bytes" yaml:"max_body_bytes" validate:"gte=0"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int `json:"port" yaml:"port" validate:"gte=0,lte=65535"`
	ReadTimeoutSec  int `json:"read_timeout_sec" yaml:"read_timeout_sec" validate:"gte=0"`
	WriteTimeoutSec int `json:"write_timeout_sec" yaml:"write_timeout_sec" validate:"gte=0"`
	IdleTimeoutSec  int `json:"idle_timeout_sec" yaml:"idle_timeout_sec" validate:"gte=0"`
	// TrustProxyHeaders honours X-Forwarded-For when running behind a reverse proxy
	TrustProxyHeaders bool `json:"trust_proxy_headers" yaml:"trust_proxy_headers"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled        bool    `json:"enabled" yaml:"enabled"`
	ServiceName    string  `json:"service_name" yaml:"service_name"`
	ServiceVersion string  `json:"service_version" yaml:"service_version"`
	Environment    string  `json:"environment" yaml:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate" yaml:"sample_rate" validate:"gte=0,lte=1"`
	UseStdout      bool    `json:"use_stdout" yaml:"use_stdout"`
}

// DestinationByName returns the destination with the given logical name
func (c *Config) DestinationByName(name string) (Destination, bool) {
	for _, d := range c.Destinations {
		if d.Name == name {
			return d, true
		}
	}
	return Destination{}, false
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
