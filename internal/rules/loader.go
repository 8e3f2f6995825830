// Package rules loads the detection vocabulary and risk policy from YAML.
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/subguard/internal/detect"
)

// Loader reads a rules file layered over the built-in tables.
type Loader struct {
	filePath string
}

// NewLoader creates a loader. An empty path means built-in rules only.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load returns the merged rules. Keys present in the file replace the
// built-in value wholesale; lists are not appended to. Unknown keys are an
// error so a typo does not silently fall back to defaults.
func (l *Loader) Load() (detect.Rules, error) {
	r := detect.DefaultRules()
	if l.filePath == "" {
		return r, nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return r, fmt.Errorf("failed to read rules file: %w", err)
	}
	if err := decode(data, &r); err != nil {
		return detect.DefaultRules(), fmt.Errorf("failed to parse rules yaml: %w", err)
	}
	return r, nil
}

// Engine loads the rules and compiles them.
func (l *Loader) Engine() (*detect.Engine, error) {
	r, err := l.Load()
	if err != nil {
		return nil, err
	}
	e, err := detect.New(r)
	if err != nil {
		return nil, fmt.Errorf("invalid rules in %s: %w", l.filePath, err)
	}
	return e, nil
}

func decode(data []byte, r *detect.Rules) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(r); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
