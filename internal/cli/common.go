package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/gofiber/template/django/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	admingen "github.com/goliatone/go-admingen"
)

type runOptions struct {
	metadata     string
	config       string
	format       string
	templateDirs []string
	viewsDir     string
	verbose      bool
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.metadata, "metadata", "m", "", "Metadata document (yaml or json)")
	cmd.Flags().StringVarP(&o.config, "config", "c", "", "Generator config (yaml or toml)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "Output format: js, json or yaml")
	cmd.Flags().StringSliceVar(&o.templateDirs, "template-dir", nil, "Directories searched for templates before the embedded ones")
	cmd.Flags().StringVar(&o.viewsDir, "views-dir", "", "Render through the django view engine rooted at this directory")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "Log pipeline progress")
	_ = cmd.MarkFlagRequired("metadata")
}

// session holds everything needed to run a generation.
type session struct {
	cfg         admingen.Config
	provider    *admingen.StaticProvider
	generator   *admingen.Generator
	definitions []admingen.EntityDefinition
	logger      admingen.Logger
}

func (o *runOptions) loadConfig() (admingen.Config, error) {
	cfg := admingen.DefaultConfig()
	if o.config != "" {
		loaded, err := admingen.LoadConfig(o.config)
		if err != nil {
			return admingen.Config{}, err
		}
		cfg = loaded
	}
	if o.format != "" {
		cfg.Format = o.format
	}
	if len(o.templateDirs) > 0 {
		cfg.TemplateDirs = slices.Concat(o.templateDirs, cfg.TemplateDirs)
	}
	return cfg, nil
}

func (o *runOptions) newLogger() (admingen.Logger, error) {
	if !o.verbose {
		return admingen.NewZapLogger(zap.NewNop()), nil
	}
	z, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return admingen.NewZapLogger(z), nil
}

func (o *runOptions) newSession() (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	lgr, err := o.newLogger()
	if err != nil {
		return nil, err
	}

	provider, err := admingen.LoadStaticProviderFile(o.metadata)
	if err != nil {
		return nil, err
	}

	renderer, err := o.newRenderer(cfg, lgr)
	if err != nil {
		return nil, err
	}

	naming, ok := admingen.NamingStrategyByName(cfg.Naming)
	if !ok {
		return nil, admingen.NewConfigurationError("unknown naming strategy", map[string]any{"naming": cfg.Naming})
	}

	var guesser admingen.ReferenceGuesser = admingen.NewDefaultReferenceGuesser(provider, naming,
		admingen.WithReferenceCandidates(cfg.ReferenceFields...),
		admingen.WithIdentifierField(cfg.IdentifierField),
	)
	if refs := provider.References(); len(refs) > 0 {
		guesser = admingen.StaticReferenceGuesser{ByClass: refs, Next: guesser}
	}

	generator, err := admingen.NewConfiguredGenerator(cfg, provider, guesser, renderer, lgr)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:         cfg,
		provider:    provider,
		generator:   generator,
		definitions: provider.Definitions(),
		logger:      lgr,
	}, nil
}

func (o *runOptions) newRenderer(cfg admingen.Config, lgr admingen.Logger) (admingen.Renderer, error) {
	if o.viewsDir == "" {
		return admingen.RendererByFormat(cfg.Format, cfg.TemplateConfig(), lgr)
	}

	if info, err := os.Stat(o.viewsDir); err != nil || !info.IsDir() {
		return nil, admingen.NewConfigurationError("views directory does not exist", map[string]any{"dir": o.viewsDir})
	}
	engine := django.New(o.viewsDir, ".tpl")
	return admingen.NewViewsRenderer(engine, cfg.Template, cfg.TemplateGlobals())
}
