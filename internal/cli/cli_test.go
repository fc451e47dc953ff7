package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/temirov/scout/internal/commands"
	"github.com/temirov/scout/internal/config"
	"github.com/temirov/scout/internal/llm"
)

const (
	testAnswer      = "The module is named example."
	testModuleFile  = "module example\n"
	testMainFile    = "package main\n"
	testGitignore   = "build/\n"
	testBuildOutput = "binary"
)

// stepCompleter answers each agent step with a fixed reply chosen from the system prompt.
type stepCompleter struct {
	review        string
	answerPrompts []string
	modelIDs      []string
}

func (completer *stepCompleter) Complete(_ context.Context, messages []llm.Message, modelID string) (llm.Response, error) {
	completer.modelIDs = append(completer.modelIDs, modelID)
	system := messages[0].Content
	reply := ""
	switch {
	case strings.Contains(system, "critical reviewer"):
		reply = completer.review
	case strings.Contains(system, "You plan how"):
		reply = `["tree .", "show_file go.mod"]`
	case strings.Contains(system, "You analyze code repositories"):
		completer.answerPrompts = append(completer.answerPrompts, messages[len(messages)-1].Content)
		reply = testAnswer
	default:
		reply = `{"tree": ["."], "show_file": ["go.mod"]}`
	}
	return llm.Response{Choices: []llm.Choice{{Content: reply}}}, nil
}

type recordingCopier struct {
	copied []string
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return nil
}

type commandHarness struct {
	workspace string
	completer *stepCompleter
	copier    *recordingCopier
}

// newCommandHarness creates a workspace with a small module and makes it the working directory.
func newCommandHarness(t *testing.T) *commandHarness {
	t.Helper()
	workspace := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	writeWorkspaceFile(t, workspace, "go.mod", testModuleFile)
	writeWorkspaceFile(t, workspace, filepath.Join("src", "main.go"), testMainFile)
	writeWorkspaceFile(t, workspace, ".gitignore", testGitignore)
	writeWorkspaceFile(t, workspace, filepath.Join("build", "out.bin"), testBuildOutput)
	t.Chdir(workspace)
	return &commandHarness{
		workspace: workspace,
		completer: &stepCompleter{review: "YES"},
		copier:    &recordingCopier{},
	}
}

func writeWorkspaceFile(t *testing.T, workspace string, relativePath string, content string) {
	t.Helper()
	fullPath := filepath.Join(workspace, relativePath)
	if mkdirError := os.MkdirAll(filepath.Dir(fullPath), 0o755); mkdirError != nil {
		t.Fatalf("mkdir: %v", mkdirError)
	}
	if writeError := os.WriteFile(fullPath, []byte(content), 0o600); writeError != nil {
		t.Fatalf("write %s: %v", relativePath, writeError)
	}
}

func (harness *commandHarness) run(arguments ...string) (string, error) {
	var buffer bytes.Buffer
	rootCommand := NewRootCommand(Dependencies{
		NewCompleter: func(config.ApplicationConfiguration, *zap.Logger) (llm.Completer, error) {
			return harness.completer, nil
		},
		NewLogger:        func(bool) (*zap.Logger, error) { return zap.NewNop(), nil },
		Copier:           harness.copier,
		Output:           &buffer,
		WorkingDirectory: func() (string, error) { return harness.workspace, nil },
	})
	rootCommand.SetArgs(joinToggleLiterals(rootCommand, arguments))
	rootCommand.SetErr(&bytes.Buffer{})
	executeError := rootCommand.ExecuteContext(context.Background())
	return buffer.String(), executeError
}

func TestAskCommandPrintsReviewedAnswer(t *testing.T) {
	harness := newCommandHarness(t)

	output, askError := harness.run("ask", "--model", "custom-model", "What", "is", "the", "module", "name?")
	if askError != nil {
		t.Fatalf("ask failed: %v", askError)
	}
	if output != testAnswer+"\n" {
		t.Fatalf("unexpected output %q", output)
	}
	if len(harness.completer.answerPrompts) != 1 {
		t.Fatalf("expected one answer prompt, got %d", len(harness.completer.answerPrompts))
	}
	answerPrompt := harness.completer.answerPrompts[0]
	for _, fragment := range []string{"What is the module name?", "## Command: show_file go.mod", testModuleFile, "main.go"} {
		if !strings.Contains(answerPrompt, fragment) {
			t.Fatalf("expected %q in answer prompt:\n%s", fragment, answerPrompt)
		}
	}
	if strings.Contains(answerPrompt, "out.bin") {
		t.Fatalf("ignored build output leaked into the answer prompt:\n%s", answerPrompt)
	}
	for _, modelID := range harness.completer.modelIDs {
		if modelID != "custom-model" {
			t.Fatalf("expected model override, got %q", modelID)
		}
	}
	if len(harness.copier.copied) != 0 {
		t.Fatalf("answer copied without --copy")
	}
}

func TestAskCommandIterationLimitJSON(t *testing.T) {
	harness := newCommandHarness(t)
	harness.completer.review = "NO: the answer is vague"

	output, askError := harness.run("ask", "--format", "json", "--max-iterations", "2", "--copy", "Name?")
	if askError != nil {
		t.Fatalf("ask failed: %v", askError)
	}
	var document struct {
		SessionID    string `json:"sessionId"`
		Question     string `json:"question"`
		Answer       string `json:"answer"`
		Iterations   int    `json:"iterations"`
		LimitReached bool   `json:"limitReached"`
	}
	if decodeError := json.Unmarshal([]byte(output), &document); decodeError != nil {
		t.Fatalf("invalid json output %q: %v", output, decodeError)
	}
	if !document.LimitReached || document.Iterations != 2 || document.Question != "Name?" || document.SessionID == "" {
		t.Fatalf("unexpected document %+v", document)
	}
	if !strings.HasPrefix(document.Answer, testAnswer) || !strings.Contains(document.Answer, "reached iteration limit of 2") {
		t.Fatalf("unexpected answer %q", document.Answer)
	}
	if len(harness.copier.copied) != 1 || harness.copier.copied[0] != document.Answer {
		t.Fatalf("unexpected clipboard content %v", harness.copier.copied)
	}
}

func TestAskCommandUsesConfigurationFile(t *testing.T) {
	harness := newCommandHarness(t)
	harness.completer.review = "**Approved.** The answer is complete."
	writeWorkspaceFile(t, harness.workspace, "config.yaml", `model: configured-model
format: json
review:
  affirmative:
    - approved
`)

	output, askError := harness.run("ask", "Name?")
	if askError != nil {
		t.Fatalf("ask failed: %v", askError)
	}
	var document map[string]any
	if decodeError := json.Unmarshal([]byte(output), &document); decodeError != nil {
		t.Fatalf("expected configured json output, got %q", output)
	}
	if document["limitReached"] != false || document["iterations"] != float64(1) {
		t.Fatalf("configured affirmative token was not honored: %v", document)
	}
	if harness.completer.modelIDs[0] != "configured-model" {
		t.Fatalf("expected configured model, got %q", harness.completer.modelIDs[0])
	}
}

func TestAskCommandRequiresQuestion(t *testing.T) {
	harness := newCommandHarness(t)
	if _, askError := harness.run("ask"); askError == nil {
		t.Fatalf("expected error without a question")
	}
}

func TestTreeCommand(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		expected  string
	}{
		{
			name:      "respects_gitignore",
			arguments: []string{"tree"},
			expected:  "├── .gitignore\n├── go.mod\n└── src\n    └── main.go\n",
		},
		{
			name:      "depth_and_no_gitignore",
			arguments: []string{"tree", "--depth", "1", "--no-gitignore"},
			expected:  "├── .gitignore\n├── build\n├── go.mod\n└── src\n",
		},
		{
			name:      "exclusion_pattern",
			arguments: []string{"tree", "-e", "*.mod", "--depth", "1"},
			expected:  "├── .gitignore\n└── src\n",
		},
		{
			name:      "explicit_path",
			arguments: []string{"tree", "src"},
			expected:  "└── main.go\n",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newCommandHarness(t)
			output, treeError := harness.run(testCase.arguments...)
			if treeError != nil {
				t.Fatalf("tree failed: %v", treeError)
			}
			if output != testCase.expected {
				t.Fatalf("expected\n%q\ngot\n%q", testCase.expected, output)
			}
		})
	}
}

func TestTreeCommandErrors(t *testing.T) {
	harness := newCommandHarness(t)

	_, missingError := harness.run("tree", "absent")
	if !errors.Is(missingError, commands.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", missingError)
	}
	if _, formatError := harness.run("tree", "--format", "xml"); formatError == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestShowCommand(t *testing.T) {
	harness := newCommandHarness(t)

	output, showError := harness.run("show", "go.mod")
	if showError != nil || output != testModuleFile {
		t.Fatalf("unexpected show result %q, %v", output, showError)
	}

	encoded, jsonError := harness.run("show", "--format", "json", "go.mod")
	if jsonError != nil {
		t.Fatalf("json show failed: %v", jsonError)
	}
	var document map[string]string
	if decodeError := json.Unmarshal([]byte(encoded), &document); decodeError != nil {
		t.Fatalf("invalid json %q: %v", encoded, decodeError)
	}
	if document["command"] != "show_file go.mod" || document["output"] != testModuleFile {
		t.Fatalf("unexpected document %v", document)
	}

	if _, directoryError := harness.run("show", "src"); !errors.Is(directoryError, commands.ErrPathIsDirectory) {
		t.Fatalf("expected ErrPathIsDirectory, got %v", directoryError)
	}
	if _, missingError := harness.run("show", "absent.go"); !errors.Is(missingError, commands.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", missingError)
	}
}

func TestInitCommand(t *testing.T) {
	harness := newCommandHarness(t)
	writeWorkspaceFile(t, harness.workspace, "config.yaml", "format: [unterminated\n")

	if _, brokenError := harness.run("tree"); brokenError == nil {
		t.Fatalf("expected invalid configuration to fail")
	}
	if _, existsError := harness.run("init"); existsError == nil {
		t.Fatalf("expected init to refuse overwriting configuration")
	}

	output, initError := harness.run("init", "--force")
	if initError != nil {
		t.Fatalf("init failed: %v", initError)
	}
	configurationPath := filepath.Join(harness.workspace, "config.yaml")
	if !strings.Contains(output, configurationPath) {
		t.Fatalf("expected %s in output %q", configurationPath, output)
	}
	if _, treeError := harness.run("tree", "--depth", "1"); treeError != nil {
		t.Fatalf("expected initialized configuration to load: %v", treeError)
	}

	globalOutput, globalError := harness.run("init", "--global")
	if globalError != nil {
		t.Fatalf("global init failed: %v", globalError)
	}
	if !strings.Contains(globalOutput, filepath.Join(".scout", "config.yaml")) {
		t.Fatalf("unexpected global output %q", globalOutput)
	}
}

func TestVersionFlag(t *testing.T) {
	harness := newCommandHarness(t)
	output, versionError := harness.run("--version")
	if versionError != nil {
		t.Fatalf("version failed: %v", versionError)
	}
	if !strings.HasPrefix(output, "scout version: ") {
		t.Fatalf("unexpected version output %q", output)
	}
}
