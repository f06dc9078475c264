package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Built-in example prompts shown in the chat UI when no examples file is
// configured.
var defaultExamplePrompts = []string{
	"Как подготовиться к пайплайну RAG для курса?",
	"Что включает граф знаний для тем по машинному обучению?",
	"Как лучше объяснить студенту векторное хранилище?",
}

type examplesFile struct {
	Examples []string `yaml:"examples"`
}

// LoadExamples reads the example prompts from a YAML file of the form
// `examples: [...]`. An empty path returns the built-in prompts.
func LoadExamples(path string) ([]string, error) {
	if path == "" {
		return defaultExamplePrompts, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read examples file: %w", err)
	}

	var parsed examplesFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse examples file: %w", err)
	}
	if len(parsed.Examples) == 0 {
		return defaultExamplePrompts, nil
	}
	return parsed.Examples, nil
}
