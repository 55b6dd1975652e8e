package config

import (
	"os"

	duerrors "github.com/duautomation/diagrunner/pkg/errors"
)

// Environment variable names forming the device update service contract.
const (
	EnvAccountEndpoint = "ADU_ACCOUNT_ENDPOINT"
	EnvInstanceID      = "ADU_INSTANCE_ID"
	EnvAPIToken        = "ADU_API_TOKEN"
	EnvAPIVersion      = "ADU_API_VERSION"
)

// DefaultAPIVersion is used when ADU_API_VERSION is not set.
const DefaultAPIVersion = "2022-10-01"

// ServiceConfig holds connection settings for the device update service,
// sourced from the process environment once at startup.
type ServiceConfig struct {
	AccountEndpoint string `validate:"required,https_url"`
	InstanceID      string `validate:"required,identifier"`
	APIToken        string `validate:"required"`
	APIVersion      string `validate:"required"`
}

// ServiceConfigFromEnvironment reads and validates the service configuration
// from environment variables.
func ServiceConfigFromEnvironment() (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		AccountEndpoint: os.Getenv(EnvAccountEndpoint),
		InstanceID:      os.Getenv(EnvInstanceID),
		APIToken:        os.Getenv(EnvAPIToken),
		APIVersion:      os.Getenv(EnvAPIVersion),
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	if err := ValidateServiceConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateServiceConfig performs structural validation on a service configuration.
func ValidateServiceConfig(cfg *ServiceConfig) error {
	if cfg == nil {
		return duerrors.NewValidationError("service", "service configuration is nil", nil)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	return nil
}
