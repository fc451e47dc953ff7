package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/temirov/scout/internal/utils"
)

type configTestCase struct {
	name                string
	globalContent       string
	localContent        string
	explicitPath        string
	explicitContent     string
	expectModel         string
	expectProvider      string
	expectMaxIterations *int
	expectParallel      *int
	expectIncludeGit    *bool
	expectExclude       []string
	expectAffirmative   []string
}

func intPointer(value int) *int {
	pointer := value
	return &pointer
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:                "local_overrides_global",
			globalContent:       "model: gpt-4o\nprovider: openai\nmax_iterations: 5\npaths:\n  include_git: true\n",
			localContent:        "model: claude-sonnet\nmax_iterations: 2\nparallel_commands: 4\npaths:\n  exclude: [\"*.log\", \"*.log\", \"dist/\"]\n",
			expectModel:         "claude-sonnet",
			expectProvider:      "openai",
			expectMaxIterations: intPointer(2),
			expectParallel:      intPointer(4),
			expectIncludeGit:    boolPointer(true),
			expectExclude:       []string{"*.log", "dist/"},
		},
		{
			name:                "explicit_path_only",
			globalContent:       "model: gpt-4o\n",
			explicitPath:        "custom.yaml",
			explicitContent:     "model: custom-model\nreview:\n  affirmative: [\"yes\", \"adequate\"]\n",
			expectModel:         "custom-model",
			expectMaxIterations: nil,
			expectAffirmative:   []string{"yes", "adequate"},
			expectExclude:       []string{},
		},
		{
			name:          "no_files",
			expectExclude: []string{},
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
			if loadedConfig.Model != testCase.expectModel {
				t.Fatalf("expected model %q, got %q", testCase.expectModel, loadedConfig.Model)
			}
			if loadedConfig.Provider != testCase.expectProvider {
				t.Fatalf("expected provider %q, got %q", testCase.expectProvider, loadedConfig.Provider)
			}
			if !reflect.DeepEqual(loadedConfig.MaxIterations, testCase.expectMaxIterations) {
				t.Fatalf("expected max iterations %v, got %v", testCase.expectMaxIterations, loadedConfig.MaxIterations)
			}
			if !reflect.DeepEqual(loadedConfig.ParallelCommands, testCase.expectParallel) {
				t.Fatalf("expected parallel commands %v, got %v", testCase.expectParallel, loadedConfig.ParallelCommands)
			}
			if !reflect.DeepEqual(loadedConfig.Paths.IncludeGit, testCase.expectIncludeGit) {
				t.Fatalf("expected include git %v, got %v", testCase.expectIncludeGit, loadedConfig.Paths.IncludeGit)
			}
			if !reflect.DeepEqual(loadedConfig.Paths.Exclude, testCase.expectExclude) {
				t.Fatalf("expected exclude %v, got %v", testCase.expectExclude, loadedConfig.Paths.Exclude)
			}
			if testCase.expectAffirmative != nil && !reflect.DeepEqual(loadedConfig.Review.Affirmative, testCase.expectAffirmative) {
				t.Fatalf("expected affirmative %v, got %v", testCase.expectAffirmative, loadedConfig.Review.Affirmative)
			}
		})
	}
}

func TestLoadApplicationConfigurationRejectsDirectory(t *testing.T) {
	homeDir := t.TempDir()
	workingDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	if err := os.MkdirAll(filepath.Join(workingDir, utils.ConfigFileName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir}); err == nil {
		t.Fatalf("expected error for directory configuration path")
	}
}

func TestIntAndBoolDefaults(t *testing.T) {
	if IntOrDefault(nil, 3) != 3 || IntOrDefault(intPointer(7), 3) != 7 {
		t.Fatalf("unexpected IntOrDefault results")
	}
	if !BoolOrDefault(nil, true) || BoolOrDefault(boolPointer(false), true) {
		t.Fatalf("unexpected BoolOrDefault results")
	}
}

func TestLoadApplicationConfigurationEnvironmentOverrides(t *testing.T) {
	homeDir := t.TempDir()
	workingDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	localContent := "model: file-model\nprovider: anthropic\nmax_iterations: 2\npaths:\n  use_gitignore: true\n  exclude: [\"*.log\"]\n"
	if err := os.WriteFile(filepath.Join(workingDir, utils.ConfigFileName), []byte(localContent), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}
	t.Setenv("SCOUT_MODEL", "env-model")
	t.Setenv("SCOUT_MAX_ITERATIONS", "7")
	t.Setenv("SCOUT_TEMPERATURE", "0.5")
	t.Setenv("SCOUT_PATHS_USE_GITIGNORE", "false")

	loadedConfig, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir})
	if err != nil {
		t.Fatalf("LoadApplicationConfiguration error: %v", err)
	}
	if loadedConfig.Model != "env-model" || loadedConfig.Provider != "anthropic" {
		t.Fatalf("unexpected model/provider %q/%q", loadedConfig.Model, loadedConfig.Provider)
	}
	if IntOrDefault(loadedConfig.MaxIterations, 0) != 7 {
		t.Fatalf("expected max iterations from environment, got %v", loadedConfig.MaxIterations)
	}
	if loadedConfig.Temperature == nil || *loadedConfig.Temperature != 0.5 {
		t.Fatalf("expected temperature from environment, got %v", loadedConfig.Temperature)
	}
	if BoolOrDefault(loadedConfig.Paths.UseGitignore, true) {
		t.Fatalf("expected use_gitignore disabled from environment")
	}
	if !reflect.DeepEqual(loadedConfig.Paths.Exclude, []string{"*.log"}) {
		t.Fatalf("expected file exclusions to survive, got %v", loadedConfig.Paths.Exclude)
	}
}

func TestMergeDoesNotAliasLayers(t *testing.T) {
	layer := ApplicationConfiguration{MaxIterations: intPointer(3), Review: ReviewConfiguration{Negative: []string{"no"}}}
	merged := ApplicationConfiguration{}.Merge(layer)
	*layer.MaxIterations = 9
	layer.Review.Negative[0] = "changed"
	if *merged.MaxIterations != 3 || merged.Review.Negative[0] != "no" {
		t.Fatalf("merged configuration aliases its layer: %+v", merged)
	}
}
