package views

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed home.yaml
var defaultHomeYAML []byte

// HomeContent is the static text of the Home view.
type HomeContent struct {
	Title           string   `yaml:"title"`
	Intro           string   `yaml:"intro"`
	FeaturesHeading string   `yaml:"features_heading"`
	Features        []string `yaml:"features"`
}

// DefaultHome returns the built-in content.
func DefaultHome() *HomeContent {
	var c HomeContent
	if err := yaml.Unmarshal(defaultHomeYAML, &c); err != nil {
		panic(fmt.Sprintf("views: embedded home.yaml: %v", err))
	}
	return &c
}

// ParseHome decodes YAML content; fields left out keep their built-in values.
func ParseHome(data []byte) (*HomeContent, error) {
	c := DefaultHome()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing home content: %w", err)
	}
	return c, nil
}

// LoadHome reads path, falling back to the built-in content when it does not exist.
func LoadHome(path string) (*HomeContent, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultHome(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading home content: %w", err)
	}
	return ParseHome(data)
}

// Markdown renders the intro and feature list.
func (c *HomeContent) Markdown() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(c.Intro))
	if len(c.Features) > 0 {
		b.WriteString("\n\n### ")
		b.WriteString(c.FeaturesHeading)
		b.WriteString("\n")
		for _, f := range c.Features {
			b.WriteString("- ")
			b.WriteString(f)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func homeView(c *HomeContent) HandlerFunc {
	return func(Request) *Payload {
		p := newPayload(Home, c.Title)
		p.markdown(c.Markdown())
		return p
	}
}
