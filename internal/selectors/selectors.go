package selectors

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

// Table holds every selector and icon signature the pipeline depends on.
type Table struct {
	Version string `yaml:"version"`

	Reveal struct {
		Candidates string `yaml:"candidates"`
		Text       string `yaml:"text"`
	} `yaml:"reveal"`

	Fields struct {
		Username       string `yaml:"username"`
		ProfilePicture string `yaml:"profilePicture"`
		Timestamp      string `yaml:"timestamp"`
		SongData       string `yaml:"songData"`
		SongSeparator  string `yaml:"songSeparator"`
	} `yaml:"fields"`

	Media struct {
		Images string `yaml:"images"`
		Videos string `yaml:"videos"`
	} `yaml:"media"`

	Verified struct {
		Icons      string      `yaml:"icons"`
		Paths      string      `yaml:"paths"`
		Signatures []Signature `yaml:"signatures"`
	} `yaml:"verified"`

	Screenshot struct {
		Container string `yaml:"container"`
	} `yaml:"screenshot"`
}

// Signature is a known path-data prefix of the verified badge icon.
type Signature struct {
	Version string `yaml:"version"`
	Prefix  string `yaml:"prefix"`
}

func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("embedded selector table: %v", err))
	}
	return t
}

// Load reads an override table; an empty path yields the embedded default.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selector table %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode selector table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) validate() error {
	required := map[string]string{
		"reveal.candidates":    t.Reveal.Candidates,
		"reveal.text":          t.Reveal.Text,
		"fields.username":      t.Fields.Username,
		"fields.timestamp":     t.Fields.Timestamp,
		"media.images":         t.Media.Images,
		"media.videos":         t.Media.Videos,
		"verified.icons":       t.Verified.Icons,
		"screenshot.container": t.Screenshot.Container,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("selector table %q: %s is empty", t.Version, key)
		}
	}
	return nil
}

// Prefixes returns the signature prefixes in table order.
func (t *Table) Prefixes() []string {
	out := make([]string, 0, len(t.Verified.Signatures))
	for _, s := range t.Verified.Signatures {
		if s.Prefix != "" {
			out = append(out, s.Prefix)
		}
	}
	return out
}
