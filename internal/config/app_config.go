package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/ctxsnap/internal/utils"
)

const (
	// DefaultOutputFileName is the snapshot file written inside the root when nothing else is configured.
	DefaultOutputFileName = "source_code_context.txt"
	// DefaultTokenModel is the tokenizer model used when token counting is enabled without a model.
	DefaultTokenModel = "gpt-4o"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration.
type ApplicationConfiguration struct {
	Generate GenerateConfiguration `mapstructure:"generate"`
}

// GenerateConfiguration defines options of the generate command. Pointer and nil-slice
// fields mean "not set" so that later sources only override what they specify.
type GenerateConfiguration struct {
	OutputFile        string             `mapstructure:"output_file"`
	ExcludeDirs       []string           `mapstructure:"exclude_dirs"`
	ExcludeFiles      []string           `mapstructure:"exclude_files"`
	IncludeExtensions []string           `mapstructure:"include_extensions"`
	MaxFileSizeKB     *float64           `mapstructure:"max_file_size_kb"`
	UseGitignore      *bool              `mapstructure:"use_gitignore"`
	Copy              *bool              `mapstructure:"copy"`
	Tokens            TokenConfiguration `mapstructure:"tokens"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// GenerateSettings is a fully resolved GenerateConfiguration.
type GenerateSettings struct {
	OutputFile        string
	ExcludeDirs       []string
	ExcludeFiles      []string
	IncludeExtensions []string
	MaxFileSizeKB     float64
	UseGitignore      bool
	Copy              bool
	TokensEnabled     bool
	TokenModel        string
}

// DefaultGenerateConfiguration returns the built-in exclusion list and output name.
func DefaultGenerateConfiguration() GenerateConfiguration {
	maxFileSize := 0.0
	return GenerateConfiguration{
		OutputFile:  DefaultOutputFileName,
		ExcludeDirs: []string{"node_modules", "dist", utils.GitDirectoryName},
		ExcludeFiles: []string{
			"package-lock.json",
			utils.GitIgnoreFileName,
			DefaultOutputFileName,
		},
		IncludeExtensions: []string{},
		MaxFileSizeKB:     &maxFileSize,
		UseGitignore:      boolPointer(false),
		Copy:              boolPointer(false),
		Tokens: TokenConfiguration{
			Enabled: boolPointer(false),
			Model:   DefaultTokenModel,
		},
	}
}

// LoadApplicationConfiguration loads configuration from built-in defaults, the global file
// and the local (or explicit) file, later sources overriding earlier ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	merged := ApplicationConfiguration{Generate: DefaultGenerateConfiguration()}

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Generate.ExcludeDirs = utils.DeduplicatePatterns(merged.Generate.ExcludeDirs)
	merged.Generate.ExcludeFiles = utils.DeduplicatePatterns(merged.Generate.ExcludeFiles)
	merged.Generate.IncludeExtensions = utils.DeduplicatePatterns(merged.Generate.IncludeExtensions)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

// loadConfigurationFromPath reads one YAML file. A missing file yields an empty configuration
// unless required is set.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Generate = result.Generate.merge(override.Generate)
	return result
}

func (config GenerateConfiguration) merge(override GenerateConfiguration) GenerateConfiguration {
	result := config
	if override.OutputFile != "" {
		result.OutputFile = override.OutputFile
	}
	if override.ExcludeDirs != nil {
		result.ExcludeDirs = append([]string{}, override.ExcludeDirs...)
	}
	if override.ExcludeFiles != nil {
		result.ExcludeFiles = append([]string{}, override.ExcludeFiles...)
	}
	if override.IncludeExtensions != nil {
		result.IncludeExtensions = append([]string{}, override.IncludeExtensions...)
	}
	if override.MaxFileSizeKB != nil {
		result.MaxFileSizeKB = cloneFloat(override.MaxFileSizeKB)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

// Settings resolves unset values to their zero defaults.
func (config GenerateConfiguration) Settings() GenerateSettings {
	settings := GenerateSettings{
		OutputFile:        config.OutputFile,
		ExcludeDirs:       append([]string{}, config.ExcludeDirs...),
		ExcludeFiles:      append([]string{}, config.ExcludeFiles...),
		IncludeExtensions: append([]string{}, config.IncludeExtensions...),
		UseGitignore:      boolValue(config.UseGitignore),
		Copy:              boolValue(config.Copy),
		TokensEnabled:     boolValue(config.Tokens.Enabled),
		TokenModel:        config.Tokens.Model,
	}
	if settings.OutputFile == "" {
		settings.OutputFile = DefaultOutputFileName
	}
	if settings.TokenModel == "" {
		settings.TokenModel = DefaultTokenModel
	}
	if config.MaxFileSizeKB != nil {
		settings.MaxFileSizeKB = *config.MaxFileSizeKB
	}
	return settings
}

func boolPointer(value bool) *bool {
	return &value
}

func boolValue(value *bool) bool {
	return value != nil && *value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
