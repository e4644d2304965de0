package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/domain"
	"github.com/clipforge/clipforge/internal/service"
	"github.com/urfave/cli/v2"
)

// services builds the collaborators a command needs from the loaded config.
type services struct {
	metadata *service.MetadataService
	captions *service.CaptionService
}

type servicesFactory func(c *cli.Context) (*services, error)

func loadServices(c *cli.Context) (*services, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	return &services{
		metadata: service.NewMetadataService(&service.MetadataConfig{
			Timeout:     cfg.Metadata.Timeout,
			UserAgent:   cfg.Metadata.UserAgent,
			AccessToken: cfg.Metadata.AccessToken,
			GraphAPIURL: cfg.Metadata.GraphAPIURL,
			MaxPageSize: cfg.Metadata.MaxPageSize,
		}),
		captions: service.NewCaptionService(&service.CaptionConfig{
			Enabled:     cfg.Caption.Enabled && !c.Bool("no-caption"),
			Model:       cfg.Caption.Model,
			APIKey:      cfg.Caption.APIKey,
			BaseURL:     cfg.Caption.BaseURL,
			Timeout:     cfg.Caption.Timeout,
			Temperature: cfg.Caption.Temperature,
			MaxTokens:   cfg.Caption.MaxTokens,
		}),
	}, nil
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(out io.Writer) *cli.App {
	return newCLIAppWith(out, loadServices)
}

func newCLIAppWith(out io.Writer, load servicesFactory) *cli.App {
	app := &cli.App{
		Name:      "clipforge-lookup",
		Usage:     "Resolve a video link into metadata and an AI caption",
		Version:   Version,
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{"CONFIG_PATH"}, Usage: "Path to config file"},
			&cli.DurationFlag{Name: "timeout", Value: time.Minute, Usage: "Overall deadline for one command"},
		},
		Commands: []*cli.Command{
			lookupCmd(out, load),
			metadataCmd(out, load),
			captionCmd(out, load),
			platformsCmd(out),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// lookupCmd runs the full workflow: metadata, then a best-effort caption.
func lookupCmd(out io.Writer, load servicesFactory) *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Fetch metadata and generate a caption for a video link",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-caption", Usage: "Skip caption generation"},
		},
		Action: func(c *cli.Context) error {
			url, err := requireURL(c)
			if err != nil {
				return err
			}
			svc, err := load(c)
			if err != nil {
				return outputError(err)
			}
			ctx, cancel := commandContext(c)
			defer cancel()

			downloads := service.NewDownloadService(svc.metadata, svc.captions, nil)
			result, err := downloads.Process(ctx, url)
			if err != nil {
				return outputError(errors.New(domain.UserMessage(err)))
			}
			return outputJSON(out, result)
		},
	}
}

// metadataCmd resolves metadata only.
func metadataCmd(out io.Writer, load servicesFactory) *cli.Command {
	return &cli.Command{
		Name:      "metadata",
		Usage:     "Fetch video metadata only",
		ArgsUsage: "<url>",
		Action: func(c *cli.Context) error {
			url, err := requireURL(c)
			if err != nil {
				return err
			}
			svc, err := load(c)
			if err != nil {
				return outputError(err)
			}
			ctx, cancel := commandContext(c)
			defer cancel()

			meta, err := svc.metadata.Fetch(ctx, url)
			if err != nil {
				return outputError(errors.New(domain.UserMessage(err)))
			}
			return outputJSON(out, meta)
		},
	}
}

// captionCmd generates a caption without fetching metadata.
func captionCmd(out io.Writer, load servicesFactory) *cli.Command {
	return &cli.Command{
		Name:      "caption",
		Usage:     "Generate a caption for a video link",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "platform", Aliases: []string{"p"}, Required: true, Usage: "Platform the caption is written for"},
		},
		Action: func(c *cli.Context) error {
			url, err := requireURL(c)
			if err != nil {
				return err
			}
			platform, err := domain.ParsePlatform(c.String("platform"))
			if err != nil {
				return outputError(err)
			}
			svc, err := load(c)
			if err != nil {
				return outputError(err)
			}
			ctx, cancel := commandContext(c)
			defer cancel()

			caption, err := svc.captions.Generate(ctx, platform, url)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out, caption)
		},
	}
}

type platformInfo struct {
	Name        domain.Platform `json:"name"`
	Placeholder string          `json:"placeholder"`
	Selectable  bool            `json:"selectable"`
}

// platformsCmd lists the supported platforms.
func platformsCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "platforms",
		Usage: "List supported platforms",
		Action: func(c *cli.Context) error {
			platforms := make([]platformInfo, 0, len(domain.AllPlatforms))
			for _, p := range domain.AllPlatforms {
				platforms = append(platforms, platformInfo{
					Name:        p,
					Placeholder: p.Placeholder(),
					Selectable:  p.IsSelectable(),
				})
			}
			return outputJSON(out, platforms)
		},
	}
}

func requireURL(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit("exactly one <url> argument is required", 2)
	}
	return c.Args().First(), nil
}

func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, c.Duration("timeout"))
}

func outputJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	return cli.Exit(err.Error(), 1)
}
