package engine

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed prompts
var promptFiles embed.FS

// loadPrompt loads an embedded markdown prompt by name.
func loadPrompt(name string) (string, error) {
	content, err := promptFiles.ReadFile(fmt.Sprintf("prompts/%s.md", name))
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	return string(content), nil
}

// loadPromptWithContext loads a prompt and substitutes {{.Name}} variables.
func loadPromptWithContext(name string, vars map[string]string) (string, error) {
	content, err := loadPrompt(name)
	if err != nil {
		return "", err
	}
	for key, value := range vars {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		content = strings.ReplaceAll(content, placeholder, value)
	}
	return content, nil
}
