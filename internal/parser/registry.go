package parser

import (
	"fmt"
	"strings"
)

// Registry holds all available parsers and provides auto-detection.
type Registry struct {
	parsers []Parser
}

// Global registry instance
var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		parsers: []Parser{
			NewCSVParser(),
			NewTSVParser(),
			NewSemicolonParser(),
		},
	}
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register adds a new parser to the registry.
func (r *Registry) Register(p Parser) {
	r.parsers = append(r.parsers, p)
}

// FindParser detects the correct parser for a file from its name and first bytes.
// Remote sources often have no useful extension, so a name that matches nothing
// falls back to content sniffing and finally to plain CSV.
func (r *Registry) FindParser(name string, head []byte) (Parser, error) {
	for _, p := range r.parsers {
		if p.CanParse(name, head) {
			return p, nil
		}
	}
	if len(head) == 0 {
		return nil, fmt.Errorf("no suitable parser found for empty file: %s", name)
	}
	return r.GetParserByName("csv")
}

// GetParserByName returns a parser by its name.
func (r *Registry) GetParserByName(name string) (Parser, error) {
	name = strings.ToLower(name)
	for _, p := range r.parsers {
		if strings.ToLower(p.Name()) == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("parser not found: %s", name)
}
