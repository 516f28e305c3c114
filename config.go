package admingen

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v2"
)

// Config holds the settings of a generation run, loadable from YAML or TOML.
type Config struct {
	Title           string   `yaml:"title" toml:"title" json:"title"`
	BaseAPIURL      string   `yaml:"base_api_url" toml:"base_api_url" json:"base_api_url"`
	AppModule       string   `yaml:"app_module" toml:"app_module" json:"app_module"`
	Format          string   `yaml:"format" toml:"format" json:"format"`
	Naming          string   `yaml:"naming" toml:"naming" json:"naming"`
	DuplicateNames  string   `yaml:"duplicate_names" toml:"duplicate_names" json:"duplicate_names"`
	Concurrency     int      `yaml:"concurrency" toml:"concurrency" json:"concurrency"`
	Include         []string `yaml:"include" toml:"include" json:"include"`
	Exclude         []string `yaml:"exclude" toml:"exclude" json:"exclude"`
	Template        string   `yaml:"template" toml:"template" json:"template"`
	TemplateDirs    []string `yaml:"template_dirs" toml:"template_dirs" json:"template_dirs"`
	ReferenceFields []string `yaml:"reference_fields" toml:"reference_fields" json:"reference_fields"`
	IdentifierField string   `yaml:"identifier_field" toml:"identifier_field" json:"identifier_field"`
}

func DefaultConfig() Config {
	return Config{
		Title:           "Generated Backend",
		BaseAPIURL:      "/api/",
		AppModule:       "myApp",
		Format:          "js",
		Naming:          "snake",
		DuplicateNames:  string(DuplicateOverwrite),
		Concurrency:     1,
		ReferenceFields: slices.Clone(DefaultReferenceFields),
		IdentifierField: "id",
	}
}

// LoadConfig reads a .yaml, .yml or .toml file and fills unset values with defaults.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(raw), &cfg); err != nil {
			return Config{}, NewConfigurationError("invalid toml config", map[string]any{"path": path, "cause": err.Error()})
		}
	case ".yaml", ".yml", ".json":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, NewConfigurationError("invalid yaml config", map[string]any{"path": path, "cause": err.Error()})
		}
	default:
		return Config{}, NewConfigurationError("unsupported config format", map[string]any{"path": path})
	}

	return cfg.WithDefaults()
}

// WithDefaults returns a copy with every zero value taken from DefaultConfig.
func (c Config) WithDefaults() (Config, error) {
	if err := mergo.Merge(&c, DefaultConfig()); err != nil {
		return Config{}, fmt.Errorf("merge config defaults: %w", err)
	}
	return c, nil
}

// EntityFilter compiles the include and exclude class globs. Namespace
// separators are normalized to "/", so App\Entity\* matches the classes of
// App\Entity and App\** matches every class below App.
func (c Config) EntityFilter() (func(EntityDefinition) bool, error) {
	include, err := compileGlobs(c.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileGlobs(c.Exclude)
	if err != nil {
		return nil, err
	}

	return func(def EntityDefinition) bool {
		class := normalizeClassPath(def.Class)
		if len(include) > 0 && !matchAny(include, class) {
			return false
		}
		return !matchAny(exclude, class)
	}, nil
}

// TemplateGlobals are the values exposed to templates.
func (c Config) TemplateGlobals() map[string]any {
	return map[string]any{
		"title":        c.Title,
		"base_api_url": c.BaseAPIURL,
		"app_module":   c.AppModule,
	}
}

// TemplateConfig derives the template renderer settings.
func (c Config) TemplateConfig() TemplateConfig {
	return TemplateConfig{
		Dirs:    c.TemplateDirs,
		Name:    c.Template,
		Globals: c.TemplateGlobals(),
	}
}

// GeneratorOptions translates the config into generator options.
func (c Config) GeneratorOptions() ([]Option, error) {
	filter, err := c.EntityFilter()
	if err != nil {
		return nil, err
	}
	opts := []Option{WithDuplicatePolicy(DuplicatePolicy(c.DuplicateNames))}
	if len(c.Include) > 0 || len(c.Exclude) > 0 {
		opts = append(opts, WithEntityFilter(filter))
	}
	return opts, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(normalizeClassPath(pattern), '/')
		if err != nil {
			return nil, NewConfigurationError("invalid class pattern", map[string]any{
				"pattern": pattern,
				"cause":   err.Error(),
			})
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

func normalizeClassPath(class string) string {
	return strings.ReplaceAll(class, `\`, "/")
}

// NewConfiguredGenerator wires the default stages from the config. A nil
// guesser uses DefaultReferenceGuesser with the configured reference fields.
func NewConfiguredGenerator(cfg Config, provider MetadataProvider, guesser ReferenceGuesser, renderer Renderer, lgr Logger) (*Generator, error) {
	cfg, err := cfg.WithDefaults()
	if err != nil {
		return nil, err
	}

	naming, ok := NamingStrategyByName(cfg.Naming)
	if !ok {
		return nil, NewConfigurationError("unknown naming strategy", map[string]any{"naming": cfg.Naming})
	}

	lgr = getLogger(lgr)
	if guesser == nil {
		guesser = NewDefaultReferenceGuesser(provider, naming,
			WithReferenceCandidates(cfg.ReferenceFields...),
			WithIdentifierField(cfg.IdentifierField),
		)
	}

	opts, err := cfg.GeneratorOptions()
	if err != nil {
		return nil, err
	}

	stages := WithTransformers(
		NewFieldTypeTransformer(provider, naming, WithConcurrency(cfg.Concurrency), WithFieldTypeLogger(lgr)),
		NewRelationshipTransformer(provider, guesser, WithRelationshipLogger(lgr)),
	)

	return NewGenerator(renderer, append([]Option{stages, WithLogger(lgr)}, opts...)...)
}
