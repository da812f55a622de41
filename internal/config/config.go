// Package config provides configuration management for the PDF translation
// pipeline.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name.
	DefaultConfigFileName = "pdf-translator-config.json"
	// EnvMistralAPIKey is the environment variable name for the Mistral API key.
	EnvMistralAPIKey = "MISTRAL_API_KEY"
	// EnvMistralBaseURL is the environment variable name for the Mistral base URL.
	EnvMistralBaseURL = "MISTRAL_BASE_URL"
	// DefaultBaseURL is the default Mistral API base URL.
	DefaultBaseURL = "https://api.mistral.ai"
	// DefaultOCRModel is the default OCR model.
	DefaultOCRModel = "mistral-ocr-latest"
	// DefaultChatModel is the default translation model.
	DefaultChatModel = "mistral-large-latest"
	// DefaultSourceLanguage is the default source language.
	DefaultSourceLanguage = "French"
	// DefaultTargetLanguage is the default target language.
	DefaultTargetLanguage = "English"
	// DefaultConcurrency is the default number of pages translated in parallel.
	DefaultConcurrency = 3
	// DefaultRequestTimeout is the default per-request timeout in seconds.
	DefaultRequestTimeout = 120
)

// ConfigManager manages the application configuration.
type ConfigManager struct {
	configPath string
	config     *types.Config
}

// NewConfigManager creates a new ConfigManager with the specified config path.
// If configPath is empty, it uses the default path in the user's home directory.
func NewConfigManager(configPath string) (*ConfigManager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "pdf-translator", DefaultConfigFileName)
	}

	logger.Info("ConfigManager initialized", logger.String("configPath", configPath))
	return &ConfigManager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() *types.Config {
	return &types.Config{
		MistralAPIKey:  "",
		MistralBaseURL: DefaultBaseURL,
		OCRModel:       DefaultOCRModel,
		ChatModel:      DefaultChatModel,
		SourceLanguage: DefaultSourceLanguage,
		TargetLanguage: DefaultTargetLanguage,
		WorkDirectory:  "",
		Concurrency:    DefaultConcurrency,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Load loads configuration from the config file.
// A missing file and an unreadable file body both fall back to defaults;
// only an I/O error other than absence is reported.
func (m *ConfigManager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		config := &types.Config{}
		if err := json.Unmarshal(data, config); err != nil {
			logger.Warn("invalid config file format, using defaults", logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			logger.Info("configuration loaded",
				logger.String("path", m.configPath),
				logger.Int("apiKeyLength", len(config.MistralAPIKey)),
				logger.String("baseURL", config.MistralBaseURL),
				logger.String("ocrModel", config.OCRModel),
				logger.String("chatModel", config.ChatModel))
			m.config = config
		}
	}

	// Apply defaults for empty fields
	if m.config.MistralBaseURL == "" {
		m.config.MistralBaseURL = DefaultBaseURL
	}
	if m.config.OCRModel == "" {
		m.config.OCRModel = DefaultOCRModel
	}
	if m.config.ChatModel == "" {
		m.config.ChatModel = DefaultChatModel
	}
	if m.config.SourceLanguage == "" {
		m.config.SourceLanguage = DefaultSourceLanguage
	}
	if m.config.TargetLanguage == "" {
		m.config.TargetLanguage = DefaultTargetLanguage
	}
	if m.config.Concurrency == 0 {
		m.config.Concurrency = DefaultConcurrency
	}
	if m.config.RequestTimeout == 0 {
		m.config.RequestTimeout = DefaultRequestTimeout
	}

	return nil
}

// Save saves the current configuration to the config file.
func (m *ConfigManager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	// The file holds the API key, keep it owner-readable only.
	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved", logger.String("path", m.configPath))
	return nil
}

// GetAPIKey returns the Mistral API key.
// It first checks the config file value, then falls back to the environment variable.
func (m *ConfigManager) GetAPIKey() string {
	if m.config != nil && m.config.MistralAPIKey != "" {
		return m.config.MistralAPIKey
	}
	return os.Getenv(EnvMistralAPIKey)
}

// SetAPIKey sets the Mistral API key and saves the configuration.
func (m *ConfigManager) SetAPIKey(key string) error {
	logger.Info("setting API key")
	if m.config == nil {
		m.config = defaultConfig()
	}
	m.config.MistralAPIKey = key
	return m.Save()
}

// GetBaseURL returns the Mistral API base URL.
// It first checks the config file value, then falls back to the environment variable.
func (m *ConfigManager) GetBaseURL() string {
	if m.config != nil && m.config.MistralBaseURL != "" {
		return m.config.MistralBaseURL
	}
	if envURL := os.Getenv(EnvMistralBaseURL); envURL != "" {
		return envURL
	}
	return DefaultBaseURL
}

// GetConfig returns the current configuration.
func (m *ConfigManager) GetConfig() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *ConfigManager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *ConfigManager) GetConfigPath() string {
	return m.configPath
}

// GetOCRModel returns the OCR model to use.
func (m *ConfigManager) GetOCRModel() string {
	if m.config != nil && m.config.OCRModel != "" {
		return m.config.OCRModel
	}
	return DefaultOCRModel
}

// GetChatModel returns the translation model to use.
func (m *ConfigManager) GetChatModel() string {
	if m.config != nil && m.config.ChatModel != "" {
		return m.config.ChatModel
	}
	return DefaultChatModel
}

// GetSourceLanguage returns the configured source language.
func (m *ConfigManager) GetSourceLanguage() string {
	if m.config != nil && m.config.SourceLanguage != "" {
		return m.config.SourceLanguage
	}
	return DefaultSourceLanguage
}

// GetTargetLanguage returns the configured target language.
func (m *ConfigManager) GetTargetLanguage() string {
	if m.config != nil && m.config.TargetLanguage != "" {
		return m.config.TargetLanguage
	}
	return DefaultTargetLanguage
}

// GetWorkDirectory returns the work directory.
func (m *ConfigManager) GetWorkDirectory() string {
	if m.config != nil {
		return m.config.WorkDirectory
	}
	return ""
}

// GetConcurrency returns the number of pages translated in parallel.
func (m *ConfigManager) GetConcurrency() int {
	if m.config != nil && m.config.Concurrency > 0 {
		return m.config.Concurrency
	}
	return DefaultConcurrency
}

// GetChromiumPath returns the configured headless browser binary path.
// An empty value means auto-detection.
func (m *ConfigManager) GetChromiumPath() string {
	if m.config != nil {
		return m.config.ChromiumPath
	}
	return ""
}

// GetFontPath returns the font file embedded in rendered output.
// An empty value means the renderer relies on system fonts.
func (m *ConfigManager) GetFontPath() string {
	if m.config != nil {
		return m.config.FontPath
	}
	return ""
}

// GetCachePath returns the translation cache file path, empty when
// caching is disabled.
func (m *ConfigManager) GetCachePath() string {
	if m.config != nil {
		return m.config.CachePath
	}
	return ""
}

// GetRequestTimeout returns the per-request timeout in seconds.
func (m *ConfigManager) GetRequestTimeout() int {
	if m.config != nil && m.config.RequestTimeout > 0 {
		return m.config.RequestTimeout
	}
	return DefaultRequestTimeout
}

// UpdateConfig updates the configuration with new values and saves it.
// Empty strings and non-positive numbers leave the current value in place.
func (m *ConfigManager) UpdateConfig(apiKey, baseURL, ocrModel, chatModel, sourceLang, targetLang, workDir string, concurrency int) error {
	logger.Info("updating configuration")
	if m.config == nil {
		m.config = defaultConfig()
	}

	if apiKey != "" {
		m.config.MistralAPIKey = apiKey
	}
	if baseURL != "" {
		m.config.MistralBaseURL = baseURL
	}
	if ocrModel != "" {
		m.config.OCRModel = ocrModel
	}
	if chatModel != "" {
		m.config.ChatModel = chatModel
	}
	if sourceLang != "" {
		m.config.SourceLanguage = sourceLang
	}
	if targetLang != "" {
		m.config.TargetLanguage = targetLang
	}
	if workDir != "" {
		m.config.WorkDirectory = workDir
	}
	if concurrency > 0 {
		m.config.Concurrency = concurrency
	}

	return m.Save()
}
