package main

import (
	"fmt"
	"strings"

	"github.com/captify-io/create-captify-app/app"
	"github.com/captify-io/create-captify-app/app/engine"
	"github.com/captify-io/create-captify-app/app/prompt"
	"github.com/captify-io/create-captify-app/app/templates"
	"github.com/captify-io/create-captify-app/app/ui"
	"github.com/captify-io/create-captify-app/app/utils"
	"github.com/captify-io/create-captify-app/internal/config"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runGenerate creates a project in the working directory.
func runGenerate(cmd *cobra.Command, sess *app.Session, args []string, copyToClipboard func(string) error) error {
	ctx := cmd.Context()
	cfg := sess.Config
	out := sess.Stdout

	params := engine.Params{Port: cfg.Port, Description: cfg.Description}
	if len(args) > 0 {
		params.Name = strings.TrimSpace(args[0])
	}

	if sess.Interactive {
		ask := prompt.Fields{
			Name:        params.Name == "",
			Port:        !cmd.Flags().Changed(config.KeyPort),
			Description: !cmd.Flags().Changed(config.KeyDescription),
		}
		var err error
		if params, err = sess.Prompter().Params(ctx, params, ask); err != nil {
			return err
		}
	} else if params.Name == "" {
		return &engine.ValidationError{
			Field:  "project name",
			Reason: "required when running non-interactively (usage: create-captify-app <project-name>)",
		}
	}

	tpl, err := templates.Open(cfg.TemplateDir)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, sess.Styles.Title.Render(sess.Icon("📦")+"Creating app from template..."))
	gen := &engine.Generator{
		Template: tpl,
		FS:       osfs.New(sess.WorkDir),
		Atomic:   cfg.Atomic,
		Log:      sess.Log,
	}
	res, err := gen.Generate(ctx, params)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, sess.Styles.Success.Render(fmt.Sprintf("✓ Created %s successfully!", res.Target)))
	fmt.Fprintln(out)
	fmt.Fprint(out, utils.RenderFileTree(
		utils.BuildFileTree(res.Files),
		utils.TreeOptions{Emoji: sess.Emoji, Indent: "  "},
	))
	fmt.Fprintln(out)
	fmt.Fprint(out, sess.NextSteps(res.Target, params.Port))

	if cfg.CopyNextSteps && copyToClipboard != nil {
		if err := copyToClipboard(ui.NextStepsCommands(res.Target)); err != nil {
			sess.Log.Warn("could not copy next steps to clipboard", zap.Error(err))
		} else {
			fmt.Fprintln(out, sess.Styles.Help.Render("Next-step commands copied to the clipboard."))
		}
	}
	return nil
}
