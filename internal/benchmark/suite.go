// internal/benchmark/suite.go
package benchmark

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.yaml.in/yaml/v3"

	"github.com/mwiater/petit/internal/translate"
)

// DefaultCases is the built-in validation set.
func DefaultCases() []translate.Request {
	return []translate.Request{
		{Text: "Hello, how are you?", SourceLang: "en", TargetLang: "fr"},
		{Text: "The weather is nice today.", SourceLang: "en", TargetLang: "de"},
		{Text: "I love programming.", SourceLang: "en", TargetLang: "es"},
		{Text: "Good morning.", SourceLang: "en", TargetLang: "zh"},
		{Text: "Thank you very much.", SourceLang: "en", TargetLang: "ja"},
		{Text: "Je suis developpeur.", SourceLang: "fr", TargetLang: "en"},
		{Text: "Ich lerne Rust.", SourceLang: "de", TargetLang: "en"},
	}
}

// suiteFile is the on-disk layout of a suite:
//
//	[defaults]
//	src = "en"
//	max_tokens = 128
//
//	[[case]]
//	text = "Hello"
//	tgt = "fr"
//
// The YAML form uses the same keys with a "case" list.
type suiteFile struct {
	Defaults struct {
		Src       string `toml:"src" yaml:"src"`
		Tgt       string `toml:"tgt" yaml:"tgt"`
		MaxTokens int    `toml:"max_tokens" yaml:"max_tokens"`
	} `toml:"defaults" yaml:"defaults"`
	Cases []translate.Request `toml:"case" yaml:"case"`
}

// LoadSuite reads a suite file. Files ending in .yaml or .yml are parsed as
// YAML, everything else as TOML. Cases inherit missing languages and token
// limits from the defaults table.
func LoadSuite(path string) ([]translate.Request, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAMLSuite(path)
	default:
		return loadTOMLSuite(path)
	}
}

func loadYAMLSuite(path string) ([]translate.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read suite %q: %w", path, err)
	}
	defer f.Close()

	var file suiteFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read suite %q: %w", path, err)
	}
	return applyDefaults(path, file)
}

func loadTOMLSuite(path string) ([]translate.Request, error) {
	var file suiteFile
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("read suite %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("read suite %q: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return applyDefaults(path, file)
}

func applyDefaults(path string, file suiteFile) ([]translate.Request, error) {
	if len(file.Cases) == 0 {
		return nil, fmt.Errorf("suite %q: %w", path, ErrNoRequests)
	}
	cases := make([]translate.Request, 0, len(file.Cases))
	for i, c := range file.Cases {
		if c.SourceLang == "" {
			c.SourceLang = file.Defaults.Src
		}
		if c.TargetLang == "" {
			c.TargetLang = file.Defaults.Tgt
		}
		if c.MaxTokens == 0 {
			c.MaxTokens = file.Defaults.MaxTokens
		}
		switch {
		case strings.TrimSpace(c.Text) == "":
			return nil, fmt.Errorf("suite %q: case %d has no text", path, i+1)
		case c.SourceLang == "" || c.TargetLang == "":
			return nil, fmt.Errorf("suite %q: case %d needs both src and tgt", path, i+1)
		case c.MaxTokens < 0:
			return nil, fmt.Errorf("suite %q: case %d has negative max_tokens", path, i+1)
		}
		cases = append(cases, c)
	}
	return cases, nil
}
