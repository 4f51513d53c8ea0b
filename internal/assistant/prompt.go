package assistant

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompt.yaml
var defaultPrompt []byte

type PromptSpec struct {
	System string `yaml:"system"`
	Style  struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

// DefaultPrompt returns the built-in system prompt.
func DefaultPrompt() PromptSpec {
	spec, err := parsePrompt(defaultPrompt)
	if err != nil {
		panic(err)
	}
	return spec
}

// LoadPrompt reads a prompt override; an empty path yields the default.
func LoadPrompt(path string) (PromptSpec, error) {
	if path == "" {
		return DefaultPrompt(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return PromptSpec{}, err
	}
	return parsePrompt(b)
}

func parsePrompt(b []byte) (PromptSpec, error) {
	var spec PromptSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return PromptSpec{}, fmt.Errorf("parse prompt: %w", err)
	}
	if strings.TrimSpace(spec.System) == "" {
		return PromptSpec{}, fmt.Errorf("parse prompt: system prompt is empty")
	}
	if spec.Style.MaxTokens <= 0 {
		spec.Style.MaxTokens = 1024
	}
	return spec, nil
}
