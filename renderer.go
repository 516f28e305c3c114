package admingen

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/gofiber/fiber/v2"
	cfs "github.com/goliatone/go-composite-fs"
	"gopkg.in/yaml.v2"
)

// DefaultTemplate is the embedded ng-admin configuration template.
const DefaultTemplate = "config.js.tpl"

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplateConfig configures a TemplateRenderer.
type TemplateConfig struct {
	// Dirs are searched before the embedded templates, first match wins.
	Dirs []string
	// FS are searched after Dirs and before the embedded templates.
	FS []fs.FS
	// Name of the template to render, DefaultTemplate when empty.
	Name string
	// Globals are exposed to the template next to the entities.
	Globals map[string]any
}

// TemplateRenderer renders a document through a pongo2 template.
type TemplateRenderer struct {
	set     *pongo2.TemplateSet
	name    string
	globals map[string]any
	logger  Logger
}

func NewTemplateRenderer(cfg TemplateConfig, lgrs ...Logger) (*TemplateRenderer, error) {
	lgr := getLogger(lgrs...)

	sources := make([]fs.FS, 0, len(cfg.Dirs)+len(cfg.FS)+1)
	for _, dir := range cfg.Dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, NewConfigurationError("template directory does not exist", map[string]any{"dir": dir})
		}
		lgr.Debug("adding template directory %s", dir)
		sources = append(sources, os.DirFS(dir))
	}
	sources = append(sources, cfg.FS...)

	defaults, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("prepare embedded templates: %w", err)
	}
	sources = append(sources, defaults)

	loader, err := pongo2.NewHttpFileSystemLoader(http.FS(cfs.NewOverlayFS(sources...)), "")
	if err != nil {
		return nil, fmt.Errorf("create template loader: %w", err)
	}

	set := pongo2.NewSet("admingen", loader)
	set.Options.TrimBlocks = true

	name := cfg.Name
	if name == "" {
		name = DefaultTemplate
	}

	return &TemplateRenderer{
		set:     set,
		name:    name,
		globals: cfg.Globals,
		logger:  lgr,
	}, nil
}

func (r *TemplateRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	tpl, err := r.set.FromFile(r.name)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", r.name, err)
	}

	out, err := tpl.ExecuteBytes(pongo2.Context(TemplateContext(doc, r.globals)))
	if err != nil {
		return nil, fmt.Errorf("execute template %s: %w", r.name, err)
	}

	r.logger.Debug("rendered %d entities with %s", len(doc), r.name)
	return out, nil
}

// ViewsRenderer renders through a fiber view engine such as the django
// engine of gofiber/template.
type ViewsRenderer struct {
	views   fiber.Views
	name    string
	globals map[string]any
}

// NewViewsRenderer loads the engine templates up front.
func NewViewsRenderer(views fiber.Views, name string, globals map[string]any) (*ViewsRenderer, error) {
	if views == nil {
		return nil, NewConfigurationError("views renderer requires a view engine", nil)
	}
	if err := views.Load(); err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}
	if name == "" {
		name = strings.TrimSuffix(DefaultTemplate, ".tpl")
	}
	return &ViewsRenderer{views: views, name: name, globals: globals}, nil
}

func (r *ViewsRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.views.Render(&buf, r.name, TemplateContext(doc, r.globals)); err != nil {
		return nil, fmt.Errorf("render view %s: %w", r.name, err)
	}
	return buf.Bytes(), nil
}

// JSONRenderer emits the document as indented JSON keyed by entity name.
type JSONRenderer struct {
	Indent string
}

func (r JSONRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	indent := r.Indent
	if indent == "" {
		indent = "  "
	}
	out, err := json.MarshalIndent(doc, "", indent)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(out, '\n'), nil
}

// YAMLRenderer emits the document as YAML keyed by entity name.
type YAMLRenderer struct{}

func (YAMLRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	out, err := yaml.Marshal(map[string]*EntityConfiguration(doc))
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return out, nil
}

// RendererByFormat returns the renderer for js, json or yaml output.
func RendererByFormat(format string, cfg TemplateConfig, lgrs ...Logger) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "js", "javascript":
		return NewTemplateRenderer(cfg, lgrs...)
	case "json":
		return JSONRenderer{}, nil
	case "yaml", "yml":
		return YAMLRenderer{}, nil
	}
	return nil, NewConfigurationError("unknown output format", map[string]any{"format": format})
}
