package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/ctxsnap/internal/utils"
)

type configTestCase struct {
	name              string
	globalContent     string
	localContent      string
	explicitPath      string
	explicitContent   string
	expectOutput      string
	expectExcludeDirs []string
	expectExtensions  []string
	expectMaxSizeKB   float64
	expectGitignore   bool
	expectTokens      bool
	expectModel       string
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:              "defaults_only",
			expectOutput:      DefaultOutputFileName,
			expectExcludeDirs: []string{"node_modules", "dist", ".git"},
			expectExtensions:  []string{},
			expectModel:       DefaultTokenModel,
		},
		{
			name:              "local_overrides_global",
			globalContent:     "generate:\n  output_file: global.txt\n  max_file_size_kb: 64\n  use_gitignore: true\n  exclude_dirs: [vendor]\n",
			localContent:      "generate:\n  output_file: local.txt\n  include_extensions: [.go, .go]\n  tokens:\n    enabled: true\n    model: custom\n",
			expectOutput:      "local.txt",
			expectExcludeDirs: []string{"vendor"},
			expectExtensions:  []string{".go"},
			expectMaxSizeKB:   64,
			expectGitignore:   true,
			expectTokens:      true,
			expectModel:       "custom",
		},
		{
			name:              "explicit_path_replaces_local",
			localContent:      "generate:\n  output_file: local.txt\n",
			explicitPath:      "custom.yaml",
			explicitContent:   "generate:\n  output_file: explicit.txt\n  max_file_size_kb: 0.5\n",
			expectOutput:      "explicit.txt",
			expectExcludeDirs: []string{"node_modules", "dist", ".git"},
			expectExtensions:  []string{},
			expectMaxSizeKB:   0.5,
			expectModel:       DefaultTokenModel,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDir, utils.ConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDir, utils.ConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDir, testCase.explicitPath)
				if err := os.WriteFile(target, []byte(testCase.explicitContent), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			t.Setenv("HOME", homeDir)
			t.Setenv("USERPROFILE", homeDir)

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}
			settings := loadedConfig.Generate.Settings()

			if settings.OutputFile != testCase.expectOutput {
				t.Fatalf("expected output %s, got %s", testCase.expectOutput, settings.OutputFile)
			}
			if strings.Join(settings.ExcludeDirs, ",") != strings.Join(testCase.expectExcludeDirs, ",") {
				t.Fatalf("expected exclude dirs %v, got %v", testCase.expectExcludeDirs, settings.ExcludeDirs)
			}
			if strings.Join(settings.IncludeExtensions, ",") != strings.Join(testCase.expectExtensions, ",") {
				t.Fatalf("expected extensions %v, got %v", testCase.expectExtensions, settings.IncludeExtensions)
			}
			if settings.MaxFileSizeKB != testCase.expectMaxSizeKB {
				t.Fatalf("expected max size %v, got %v", testCase.expectMaxSizeKB, settings.MaxFileSizeKB)
			}
			if settings.UseGitignore != testCase.expectGitignore {
				t.Fatalf("expected use_gitignore %t, got %t", testCase.expectGitignore, settings.UseGitignore)
			}
			if settings.TokensEnabled != testCase.expectTokens {
				t.Fatalf("expected tokens %t, got %t", testCase.expectTokens, settings.TokensEnabled)
			}
			if settings.TokenModel != testCase.expectModel {
				t.Fatalf("expected model %q, got %q", testCase.expectModel, settings.TokenModel)
			}
		})
	}
}

func TestLoadApplicationConfigurationMissingExplicitFile(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	_, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: t.TempDir(), ExplicitFilePath: "absent.yaml"})
	if err == nil {
		t.Fatalf("expected error for missing explicit configuration")
	}
}

func TestGenerateMergeKeepsUnsetFields(t *testing.T) {
	base := DefaultGenerateConfiguration()
	override := GenerateConfiguration{Copy: boolPointer(true)}
	merged := base.merge(override)
	settings := merged.Settings()
	if !settings.Copy {
		t.Fatalf("expected copy to be enabled")
	}
	if settings.OutputFile != DefaultOutputFileName || len(settings.ExcludeDirs) != 3 {
		t.Fatalf("unset fields should keep defaults: %+v", settings)
	}
}
