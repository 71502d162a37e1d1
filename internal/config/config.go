// Package config defines the calculator configuration file and the functions
// that load, default and validate it.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"github.com/iwvelando/mortgage-calculator/internal/storage"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
)

// EnvPrefix prefixes environment overrides, e.g. MORTGAGE_LOAN_INTERESTRATE.
const EnvPrefix = "MORTGAGE"

// Configuration holds all configuration for mortgage-calculator.
type Configuration struct {
	Loan       mortgage.LoanScenario            `yaml:"loan"`
	Investment calculator.InvestmentAssumptions `yaml:"investment,omitempty"`
	Logging    LoggingConfig                    `yaml:"logging,omitempty"`
	Output     OutputConfig                     `yaml:"output,omitempty"`
	Storage    storage.Config                   `yaml:"storage,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("investment.expectedReturn", constants.DefaultExpectedReturn)
	v.SetDefault("investment.accountType", constants.AccountTypeISK)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("storage.backend", constants.StorageBackendMemory)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.Investment.AccountType = strings.ToLower(strings.TrimSpace(configuration.Investment.AccountType))
	return &configuration, nil
}

// Validate returns an error when the configuration cannot be calculated.
func (c *Configuration) Validate() error {
	if err := validation.ValidateLoanScenario(c.Loan); err != nil {
		return fmt.Errorf("loan: %w", err)
	}
	if err := validation.ValidateInvestmentAssumptions(c.Investment.ExpectedReturn, c.Investment.AccountType); err != nil {
		return fmt.Errorf("investment: %w", err)
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	switch c.Storage.Backend {
	case constants.StorageBackendMemory, constants.StorageBackendRedis, constants.StorageBackendPostgres:
	default:
		return fmt.Errorf("storage: unknown backend %q", c.Storage.Backend)
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	warnings := validation.ScenarioWarnings(c.Loan)
	if c.Investment.ExpectedReturn > 15 {
		warnings = append(warnings, fmt.Sprintf("expected return of %.1f%% is unusually high", c.Investment.ExpectedReturn))
	}
	if c.Loan.InterestRate == 0 {
		warnings = append(warnings, "interest rate is 0%, interest savings will all be zero")
	}
	return warnings
}

// Request converts the configuration into a calculator request.
func (c *Configuration) Request() calculator.Request {
	return calculator.Request{
		Loan:       c.Loan,
		Investment: c.Investment,
	}
}
