package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"icrelay/internal/constants"
	"icrelay/internal/models"
	"icrelay/internal/security"
	"icrelay/internal/tracing"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingToken        = models.ConfigError{Message: "missing Discord bot token (set TOKEN)"}
	ErrMissingDestinations = models.ConfigError{Message: "no destinations configured (set ICINFO or add destinations)"}
)

// LoadEnvFile loads KEY=value pairs from a .env file into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadConfig reads the configuration file, applies environment overrides and
// defaults, and validates the result. An empty path builds the configuration
// from the environment alone.
func LoadConfig(path string) (*models.Config, error) {
	var config models.Config

	if path != "" {
		if err := security.ValidateFilePath(path); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}

		file, err := os.ReadFile(path) // #nosec G304 - Path validated by security.ValidateFilePath above
		if err != nil {
			return nil, err
		}

		if err := decode(path, file, &config); err != nil {
			return nil, err
		}
	}

	if err := applyEnvironmentOverrides(&config); err != nil {
		return nil, err
	}
	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}
	if err := validateSecurity(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func decode(path string, data []byte, config *models.Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid YAML config: %v", err)}
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid JSON config: %v", err)}
		}
	}
	return nil
}

func applyEnvironmentOverrides(c *models.Config) error {
	if token := os.Getenv("TOKEN"); token != "" {
		c.Discord.Token = token
	}

	upsertDestination(c, constants.DestinationPublic, os.Getenv("ICINFO"), os.Getenv("ICINFOADMIN"))
	upsertDestination(c, constants.DestinationSupernatural, os.Getenv("SPNINFO"), os.Getenv("SPNINFOADMIN"))

	for _, key := range []string{"TESTERROLE", "PLAYERROLE", "MERCYMAINERROLE"} {
		if role := strings.TrimSpace(os.Getenv(key)); role != "" && !contains(c.Permissions.RoleIDs, role) {
			c.Permissions.RoleIDs = append(c.Permissions.RoleIDs, role)
		}
	}
	if userID := strings.TrimSpace(os.Getenv("QQUSERID")); userID != "" {
		c.Permissions.UserID = userID
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid PORT value: %q", port)}
		}
		c.Server.Port = p
	}

	// SECURITY: the ingress secret should come from the environment
	if secret := os.Getenv("ICRELAY_INGRESS_SECRET"); secret != "" {
		c.Ingress.Secret = secret
	}
	if level := os.Getenv("ICRELAY_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	return nil
}

// upsertDestination sets the channel ids of a named destination, creating it when absent
func upsertDestination(c *models.Config, name, channelID, adminChannelID string) {
	channelID = strings.TrimSpace(channelID)
	adminChannelID = strings.TrimSpace(adminChannelID)
	if channelID == "" && adminChannelID == "" {
		return
	}

	for i := range c.Destinations {
		if c.Destinations[i].Name != name {
			continue
		}
		if channelID != "" {
			c.Destinations[i].ChannelID = channelID
		}
		if adminChannelID != "" {
			c.Destinations[i].AdminChannelID = adminChannelID
		}
		return
	}

	c.Destinations = append(c.Destinations, models.Destination{
		Name:           name,
		ChannelID:      channelID,
		AdminChannelID: adminChannelID,
	})
}

func applyDefaults(c *models.Config) {
	if c.Discord.CommandPrefix == "" {
		c.Discord.CommandPrefix = constants.DefaultCommandPrefix
	}

	if c.Relay.CleanupDelayMs <= 0 {
		c.Relay.CleanupDelayMs = constants.DefaultCleanupDelayMs
	}
	if c.Relay.AckMessage == "" {
		c.Relay.AckMessage = constants.DefaultAckMessage
	}
	if c.Relay.SendTimeoutSec <= 0 {
		c.Relay.SendTimeoutSec = constants.DefaultSendTimeoutSec
	}

	if c.Media.MaxImageBytes <= 0 {
		c.Media.MaxImageBytes = constants.DefaultMaxImageBytes
	}
	if c.Media.FetchTimeoutSec <= 0 {
		c.Media.FetchTimeoutSec = constants.DefaultFetchTimeoutSec
	}

	if c.Ingress.DefaultChannel == "" {
		c.Ingress.DefaultChannel = constants.DefaultIngressChannel
	}
	if c.Ingress.AuthorName == "" {
		c.Ingress.AuthorName = constants.DefaultIngressAuthorName
	}
	if c.Ingress.MaxBodyBytes <= 0 {
		c.Ingress.MaxBodyBytes = constants.DefaultIngressBodyBytes
	}

	if c.Server.Port == 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}

	defaults := tracing.DefaultTracingConfig()
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = defaults.ServiceName
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = defaults.ServiceVersion
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = defaults.Environment
	}
	if c.Tracing.OTLPEndpoint == "" {
		c.Tracing.OTLPEndpoint = defaults.OTLPEndpoint
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = defaults.SampleRate
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report yaml/json key names instead of Go field names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

func validate(c *models.Config) error {
	if c.Discord.Token == "" {
		return ErrMissingToken
	}
	if len(c.Destinations) == 0 {
		return ErrMissingDestinations
	}

	if err := structValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag()))
			}
			return models.ConfigError{Message: "invalid configuration: " + strings.Join(msgs, "; ")}
		}
		return models.ConfigError{Message: err.Error()}
	}

	names := make(map[string]bool, len(c.Destinations))
	for _, d := range c.Destinations {
		if names[d.Name] {
			return models.ConfigError{Message: fmt.Sprintf("duplicate destination name: %s", d.Name)}
		}
		names[d.Name] = true
	}

	for routeID, name := range c.Ingress.Routes {
		if !names[name] {
			return models.ConfigError{Message: fmt.Sprintf("ingress route %s points at unknown destination %s", routeID, name)}
		}
	}
	return nil
}

// validateSecurity performs security-specific validation
func validateSecurity(c *models.Config) error {
	isProduction := os.Getenv("ICRELAY_ENV") == "production"

	if isProduction {
		if c.Ingress.Secret == "" {
			return models.ConfigError{Message: "ingress secret is required in production (set ICRELAY_INGRESS_SECRET environment variable)"}
		}
		if len(c.Ingress.Secret) < 32 {
			return models.ConfigError{Message: "ingress secret must be at least 32 characters long"}
		}
		if c.LogLevel == "debug" {
			return models.ConfigError{Message: "debug logging should not be used in production (security risk)"}
		}
		return nil
	}

	if c.Ingress.Secret == "" {
		fmt.Fprintf(os.Stderr, "WARNING: ingress secret not set. Set ICRELAY_INGRESS_SECRET to require signed ingress requests.\n")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
