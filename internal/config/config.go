package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/xolta-token/internal/logger"
	"github.com/oshokin/xolta-token/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// Credentials holds the account used to log in to the web application.
	Credentials Credentials `mapstructure:"api_credentials"`
	// AppURL is the root URL of the web application that redirects to the identity provider.
	AppURL string `mapstructure:"app_url"`
	// CredentialCheckPath is the URL substring identifying the credential-verification response.
	CredentialCheckPath string `mapstructure:"credential_check_path"`
	// TokenPath is the URL substring identifying the OAuth2 token response.
	TokenPath string `mapstructure:"token_path"`
	// UsernameSelector is the CSS selector of the username field.
	UsernameSelector string `mapstructure:"username_selector"`
	// PasswordSelector is the CSS selector of the password field.
	PasswordSelector string `mapstructure:"password_selector"`
	// SubmitSelector is the CSS selector of the submit control.
	SubmitSelector string `mapstructure:"submit_selector"`
	// StepTimeout bounds every individual wait of the login flow (e.g., "10s").
	StepTimeout string `mapstructure:"step_timeout"`
	// SettleDelay is how long the submit control must stay still before it is clicked (e.g., "500ms").
	SettleDelay string `mapstructure:"settle_delay"`
	// LoginBudget bounds a whole login attempt. Empty means derived from StepTimeout and SettleDelay.
	LoginBudget string `mapstructure:"login_budget"`
	// TokenValidity is how long a freshly acquired token is reused (e.g., "2h").
	TokenValidity string `mapstructure:"token_validity"`
	// CacheDir is the directory holding cached token records.
	CacheDir string `mapstructure:"cache_dir"`
	// Headless indicates whether the browser runs without a visible window.
	Headless bool `mapstructure:"headless"`
	// BrowserPath is an explicit path to a Chrome/Chromium binary. Empty means auto-detect.
	BrowserPath string `mapstructure:"browser_path"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// LogFile is an optional path of a rotating log file.
	LogFile string `mapstructure:"log_file"`
	// LogFileMaxSize is the size at which the log file is rotated (e.g., "10MB").
	LogFileMaxSize string `mapstructure:"log_file_max_size"`
	// ParsedStepTimeout is the parsed per-step timeout.
	ParsedStepTimeout time.Duration
	// ParsedSettleDelay is the parsed settle delay.
	ParsedSettleDelay time.Duration
	// ParsedLoginBudget is the parsed or derived overall login budget.
	ParsedLoginBudget time.Duration
	// ParsedTokenValidity is the parsed token validity window.
	ParsedTokenValidity time.Duration
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedLogFileMaxSizeMB is the parsed log rotation size in megabytes.
	ParsedLogFileMaxSizeMB int
}

// Credentials is the username/password pair of the monitored account.
type Credentials struct {
	// Username is the login e-mail.
	Username string `mapstructure:"username"`
	// Password is the login password.
	Password string `mapstructure:"password"`
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".xolta-token.yaml"

	// DefaultDotEnvFilename is the name of the optional environment file loaded before the configuration.
	DefaultDotEnvFilename = ".env"

	// EnvPrefix is the prefix of environment variables overriding configuration keys.
	EnvPrefix = "XOLTA"

	// DefaultAppURL is the root URL of the Xolta web application.
	DefaultAppURL = "https://app.xolta.com/"

	// DefaultCredentialCheckPath identifies the B2C self-asserted credential check.
	DefaultCredentialCheckPath = "B2C_1_sisu/SelfAsserted"

	// DefaultTokenPath identifies the B2C OAuth2 token issuance.
	DefaultTokenPath = "b2c_1_sisu/oauth2/v2.0/token"

	// DefaultStepTimeout is the default bound of each wait in the login flow.
	DefaultStepTimeout = 10 * time.Second

	// DefaultSettleDelay is the default time the submit control must stay still before clicking.
	DefaultSettleDelay = 500 * time.Millisecond

	// DefaultTokenValidity is the default validity window of a cached token.
	DefaultTokenValidity = 2 * time.Hour

	// DefaultLogFileMaxSize is the default rotation size of the log file.
	DefaultLogFileMaxSize = "10MB"

	// DefaultMaxLogLength is the default maximum size (in bytes) of logged HTTP dumps.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// loginBoundedSteps is the number of bounded waits in one login: navigation, login form,
	// submit control, credential check and token response.
	loginBoundedSteps = 5

	// cacheDirName is the name of the cache directory under the user cache directory.
	cacheDirName = "xolta-token"
)

// Static error definitions for better error handling.
var (
	// ErrEmptyUsername indicates that the username is missing.
	ErrEmptyUsername = errors.New("api_credentials.username cannot be empty")
	// ErrEmptyPassword indicates that the password is missing.
	ErrEmptyPassword = errors.New("api_credentials.password cannot be empty")
	// ErrInvalidAppURL indicates that the application URL is not an absolute http(s) URL.
	ErrInvalidAppURL = errors.New("app_url must be an absolute http(s) URL")
	// ErrEmptyInterceptPath indicates that one of the intercepted URL paths is missing.
	ErrEmptyInterceptPath = errors.New("intercepted path cannot be empty")
	// ErrEmptySelector indicates that one of the login form selectors is missing.
	ErrEmptySelector = errors.New("selector cannot be empty")
	// ErrInvalidStepTimeout indicates that the step timeout is invalid.
	ErrInvalidStepTimeout = errors.New("step_timeout must be positive")
	// ErrInvalidSettleDelay indicates that the settle delay is invalid.
	ErrInvalidSettleDelay = errors.New("settle_delay cannot be negative")
	// ErrInvalidLoginBudget indicates that the login budget is invalid.
	ErrInvalidLoginBudget = errors.New("login_budget must be positive")
	// ErrInvalidTokenValidity indicates that the token validity window is invalid.
	ErrInvalidTokenValidity = errors.New("token_validity must be positive")
	// ErrEmptyCacheDir indicates that no cache directory could be determined.
	ErrEmptyCacheDir = errors.New("cache_dir cannot be empty")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidLogFileMaxSize indicates that the log rotation size is invalid.
	ErrInvalidLogFileMaxSize = errors.New("log_file_max_size must be at least 1MB")
)

// LoadConfig loads configuration settings from a file, the environment and an optional .env file.
// A missing default configuration file is not an error; an explicitly requested one is.
func LoadConfig(configFilename string) (*Config, error) {
	if err := godotenv.Load(DefaultDotEnvFilename); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s file: %w", DefaultDotEnvFilename, err)
	}

	v := newViper()

	isExplicit := configFilename != ""
	if !isExplicit {
		configFilename = DefaultConfigFilename
	}

	exists, err := utils.IsFileExist(configFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}

	switch {
	case exists:
		v.SetConfigFile(configFilename)

		if err = v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	case isExplicit:
		return nil, fmt.Errorf("failed to read config from file: %w", os.ErrNotExist)
	}

	var cfg Config
	if err = v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// newViper creates a viper instance with defaults and environment bindings for every key.
func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials have no defaults, so they must be bound explicitly to be seen by Unmarshal.
	_ = v.BindEnv("api_credentials.username")
	_ = v.BindEnv("api_credentials.password")

	v.SetDefault("app_url", DefaultAppURL)
	v.SetDefault("credential_check_path", DefaultCredentialCheckPath)
	v.SetDefault("token_path", DefaultTokenPath)
	v.SetDefault("username_selector", "#email")
	v.SetDefault("password_selector", "#password")
	v.SetDefault("submit_selector", "#next")
	v.SetDefault("step_timeout", DefaultStepTimeout.String())
	v.SetDefault("settle_delay", DefaultSettleDelay.String())
	v.SetDefault("login_budget", "")
	v.SetDefault("token_validity", DefaultTokenValidity.String())
	v.SetDefault("cache_dir", "")
	v.SetDefault("headless", true)
	v.SetDefault("browser_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_file_max_size", DefaultLogFileMaxSize)

	return v
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,gocognit,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	cfg.Credentials.Username = strings.TrimSpace(cfg.Credentials.Username)
	if cfg.Credentials.Username == "" {
		return ErrEmptyUsername
	}

	// Passwords are taken verbatim: surrounding spaces may be significant.
	if cfg.Credentials.Password == "" {
		return ErrEmptyPassword
	}

	appURL, err := url.Parse(strings.TrimSpace(cfg.AppURL))
	if err != nil || (appURL.Scheme != "http" && appURL.Scheme != "https") || appURL.Host == "" {
		return fmt.Errorf("%w: '%s'", ErrInvalidAppURL, cfg.AppURL)
	}

	cfg.AppURL = appURL.String()

	for name, value := range map[string]string{
		"credential_check_path": cfg.CredentialCheckPath,
		"token_path":            cfg.TokenPath,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyInterceptPath, name)
		}
	}

	for name, value := range map[string]string{
		"username_selector": cfg.UsernameSelector,
		"password_selector": cfg.PasswordSelector,
		"submit_selector":   cfg.SubmitSelector,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s", ErrEmptySelector, name)
		}
	}

	cfg.ParsedStepTimeout, err = time.ParseDuration(cfg.StepTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse step timeout: %w", err)
	}

	if cfg.ParsedStepTimeout <= 0 {
		return ErrInvalidStepTimeout
	}

	cfg.ParsedSettleDelay, err = time.ParseDuration(cfg.SettleDelay)
	if err != nil {
		return fmt.Errorf("failed to parse settle delay: %w", err)
	}

	if cfg.ParsedSettleDelay < 0 {
		return ErrInvalidSettleDelay
	}

	if strings.TrimSpace(cfg.LoginBudget) == "" {
		cfg.ParsedLoginBudget = DeriveLoginBudget(cfg.ParsedStepTimeout, cfg.ParsedSettleDelay)
	} else {
		cfg.ParsedLoginBudget, err = time.ParseDuration(cfg.LoginBudget)
		if err != nil {
			return fmt.Errorf("failed to parse login budget: %w", err)
		}

		if cfg.ParsedLoginBudget <= 0 {
			return ErrInvalidLoginBudget
		}
	}

	cfg.ParsedTokenValidity, err = time.ParseDuration(cfg.TokenValidity)
	if err != nil {
		return fmt.Errorf("failed to parse token validity: %w", err)
	}

	if cfg.ParsedTokenValidity <= 0 {
		return ErrInvalidTokenValidity
	}

	if strings.TrimSpace(cfg.CacheDir) == "" {
		cfg.CacheDir, err = defaultCacheDir()
		if err != nil {
			return err
		}
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if cfg.LogFile != "" {
		maxSize, parseErr := humanize.ParseBytes(cfg.LogFileMaxSize)
		if parseErr != nil {
			return fmt.Errorf("failed to parse log file max size: %w", parseErr)
		}

		cfg.ParsedLogFileMaxSizeMB = int(utils.SafeUint64ToInt64(maxSize / humanize.MByte))
		if cfg.ParsedLogFileMaxSizeMB < 1 {
			return ErrInvalidLogFileMaxSize
		}
	}

	return nil
}

// DeriveLoginBudget returns the overall login bound implied by the per-step bounds.
func DeriveLoginBudget(stepTimeout, settleDelay time.Duration) time.Duration {
	return loginBoundedSteps*stepTimeout + settleDelay
}

// defaultCacheDir returns the per-user cache directory of the application.
func defaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%w: could not determine user cache directory: %w", ErrEmptyCacheDir, err)
	}

	if base == "" {
		return "", ErrEmptyCacheDir
	}

	return filepath.Join(base, cacheDirName), nil
}
