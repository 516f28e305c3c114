package cli

import (
	"github.com/fatih/color"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	admingen "github.com/goliatone/go-admingen"
)

// ServeCmd serves the configuration over HTTP, regenerating it from the
// metadata document on every request.
func ServeCmd() *cobra.Command {
	opts := &runOptions{}
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated configuration at /config.js",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.newSession(); err != nil {
				return err
			}

			app := newServer(opts)
			cmd.Printf("Serving %s on %s\n", color.New(color.FgCyan).Sprint("/config.js"), addr)
			return app.Listen(addr)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}

func newServer(opts *runOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if admingen.IsConfigurationError(err) || admingen.IsUnsupportedAssociation(err) {
				status = fiber.StatusUnprocessableEntity
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Get("/config.js", func(c *fiber.Ctx) error {
		s, err := opts.newSession()
		if err != nil {
			return err
		}
		out, err := s.generator.Generate(c.UserContext(), s.definitions)
		if err != nil {
			return err
		}
		c.Type(contentType(s.cfg.Format))
		return c.Send(out)
	})

	app.Get("/document.json", func(c *fiber.Ctx) error {
		s, err := opts.newSession()
		if err != nil {
			return err
		}
		doc, err := s.generator.Build(c.UserContext(), s.definitions)
		if err != nil {
			return err
		}
		out, err := admingen.JSONRenderer{}.Render(c.UserContext(), doc)
		if err != nil {
			return err
		}
		c.Type("json")
		return c.Send(out)
	})

	return app
}

func contentType(format string) string {
	switch format {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	}
	return "js"
}
