// Package docsite models the documentation-site configuration: site identity,
// theme, plugins, markdown extensions, and the ordered navigation tree. It
// loads and writes the YAML manifest consumed by the site generator and lints
// it against the docs source tree.
package docsite

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/geostab/slopekit/internal/errors"
)

// SiteConfig is the full site manifest.
type SiteConfig struct {
	SiteName        string      `yaml:"site_name"`
	SiteURL         string      `yaml:"site_url,omitempty"`
	SiteDescription string      `yaml:"site_description,omitempty"`
	SiteAuthor      string      `yaml:"site_author,omitempty"`
	RepoURL         string      `yaml:"repo_url,omitempty"`
	ExtraCSS        []string    `yaml:"extra_css,omitempty"`
	ExtraJavascript []string    `yaml:"extra_javascript,omitempty"`
	Theme           Theme       `yaml:"theme,omitempty"`
	MarkdownExt     []Extension `yaml:"markdown_extensions,omitempty"`
	Plugins         []Plugin    `yaml:"plugins,omitempty"`
	Nav             []NavEntry  `yaml:"nav,omitempty"`
}

// Theme selects the visual template. The wire form is either a bare name or a
// mapping with a name key plus arbitrary options.
type Theme struct {
	Name    string
	Options map[string]any
}

func (t *Theme) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		t.Name = value.Value
		return nil
	case yaml.MappingNode:
		var m map[string]any
		if err := value.Decode(&m); err != nil {
			return err
		}
		name, _ := m["name"].(string)
		if name == "" {
			return fmt.Errorf("theme mapping requires a name")
		}
		delete(m, "name")
		t.Name = name
		if len(m) > 0 {
			t.Options = m
		}
		return nil
	default:
		return fmt.Errorf("theme must be a string or mapping")
	}
}

func (t Theme) MarshalYAML() (any, error) {
	if len(t.Options) == 0 {
		return t.Name, nil
	}
	out := map[string]any{"name": t.Name}
	for k, v := range t.Options {
		out[k] = v
	}
	return out, nil
}

// IsZero reports whether the theme is unset, letting omitempty drop it.
func (t Theme) IsZero() bool { return t.Name == "" && len(t.Options) == 0 }

// Plugin is one plugin declaration: either a bare name or a single-key mapping
// of name to options.
type Plugin struct {
	Name    string
	Options map[string]any
}

func (p *Plugin) UnmarshalYAML(value *yaml.Node) error {
	name, opts, err := decodeNamed(value, "plugin")
	if err != nil {
		return err
	}
	p.Name, p.Options = name, opts
	return nil
}

func (p Plugin) MarshalYAML() (any, error) { return encodeNamed(p.Name, p.Options) }

// Extension is one markdown extension declaration, same wire form as Plugin.
type Extension struct {
	Name    string
	Options map[string]any
}

func (e *Extension) UnmarshalYAML(value *yaml.Node) error {
	name, opts, err := decodeNamed(value, "markdown extension")
	if err != nil {
		return err
	}
	e.Name, e.Options = name, opts
	return nil
}

func (e Extension) MarshalYAML() (any, error) { return encodeNamed(e.Name, e.Options) }

func decodeNamed(value *yaml.Node, what string) (string, map[string]any, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Value, nil, nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return "", nil, fmt.Errorf("%s mapping must have exactly one key", what)
		}
		name := value.Content[0].Value
		var opts map[string]any
		if err := value.Content[1].Decode(&opts); err != nil {
			return "", nil, err
		}
		return name, opts, nil
	default:
		return "", nil, fmt.Errorf("%s must be a string or single-key mapping", what)
	}
}

func encodeNamed(name string, opts map[string]any) (any, error) {
	if len(opts) == 0 {
		return name, nil
	}
	return map[string]map[string]any{name: opts}, nil
}

// NavEntry is one node of the navigation tree: a leaf mapping a title to a
// markdown path, or a group mapping a title to ordered children. The wire form
// is a list of single-key mappings, so insertion order survives round trips.
type NavEntry struct {
	Title    string
	Path     string
	Children []NavEntry
}

// IsLeaf reports whether the entry points at a page rather than a group.
func (e NavEntry) IsLeaf() bool { return len(e.Children) == 0 }

func (e *NavEntry) UnmarshalYAML(value *yaml.Node) error {
	// Bare scalar: a path with the title derived by the generator.
	if value.Kind == yaml.ScalarNode {
		e.Path = value.Value
		return nil
	}
	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return fmt.Errorf("nav entry must be a path or a single-key mapping")
	}
	e.Title = value.Content[0].Value

	v := value.Content[1]
	switch v.Kind {
	case yaml.ScalarNode:
		e.Path = v.Value
		return nil
	case yaml.SequenceNode:
		return v.Decode(&e.Children)
	default:
		return fmt.Errorf("nav entry %q must map to a path or a list", e.Title)
	}
}

func (e NavEntry) MarshalYAML() (any, error) {
	if e.Title == "" {
		return e.Path, nil
	}
	key := &yaml.Node{Kind: yaml.ScalarNode, Value: e.Title}
	var val yaml.Node
	if e.IsLeaf() {
		val = yaml.Node{Kind: yaml.ScalarNode, Value: e.Path}
	} else {
		if err := val.Encode(e.Children); err != nil {
			return nil, err
		}
	}
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{key, &val}}, nil
}

// Walk visits every entry depth-first in declaration order. Returning false
// from fn stops the walk.
func Walk(entries []NavEntry, fn func(e NavEntry, depth int) bool) {
	var rec func(es []NavEntry, depth int) bool
	rec = func(es []NavEntry, depth int) bool {
		for _, e := range es {
			if !fn(e, depth) {
				return false
			}
			if !e.IsLeaf() {
				if !rec(e.Children, depth+1) {
					return false
				}
			}
		}
		return true
	}
	rec(entries, 0)
}

// Load reads and parses a site manifest.
func Load(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryDocs, errors.SeverityFatal,
			"failed to read site configuration").WithContext("path", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse parses a site manifest from bytes.
func Parse(data []byte) (*SiteConfig, error) {
	var cfg SiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryDocs, errors.SeverityFatal,
			"invalid site configuration")
	}
	if cfg.SiteName == "" {
		return nil, errors.DocsLintError("parse", "site_name is required")
	}
	return &cfg, nil
}

// Write emits the manifest to path, preserving navigation order.
func Write(cfg *SiteConfig, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.CategoryDocs, errors.SeverityError,
			"failed to encode site configuration")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError,
			"failed to write site configuration").WithContext("path", path)
	}
	return nil
}
