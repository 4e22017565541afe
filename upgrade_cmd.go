package main

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/captify-io/create-captify-app/app"
	"github.com/captify-io/create-captify-app/app/engine"
	"github.com/captify-io/create-captify-app/app/prompt"
	"github.com/captify-io/create-captify-app/app/templates"
	"github.com/captify-io/create-captify-app/app/utils"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

func newUpgradeCmd(sess **app.Session) *cobra.Command {
	var (
		yes  bool
		only []string
	)
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Refresh build and style files of an existing app from the current template",
		Long: `Overwrite selected configuration files of the app in the current directory
with the copies bundled in this version of the template.

Upgraded files are copied verbatim: placeholders such as {{APP_SLUG}} are not
filled in again and must be edited by hand afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpgrade(cmd, *sess, yes, only)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt (required when not interactive)")
	cmd.Flags().StringArrayVar(&only, "only", nil, "upgrade only this path (repeatable)")
	return cmd
}

func runUpgrade(cmd *cobra.Command, sess *app.Session, yes bool, only []string) error {
	out := sess.Stdout
	st := sess.Styles

	manifest, err := templates.Upgradeable()
	if err != nil {
		return err
	}
	tpl, err := templates.Open(sess.Config.TemplateDir)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, st.Title.Render(sess.Icon("🔄")+"Upgrade Captify App"))
	fmt.Fprintln(out, st.Path.Render(sess.WorkDir))
	fmt.Fprintln(out)

	up := &engine.Upgrader{
		Template:  tpl,
		Manifest:  manifest,
		Project:   osfs.New(sess.WorkDir),
		Dir:       sess.WorkDir,
		Namespace: sess.Config.Namespace,
		Log:       sess.Log,
	}
	rep, err := up.Run(cmd.Context(), upgradeSelector(sess, yes, normalizePaths(only)))

	for _, p := range rep.Upgraded {
		fmt.Fprintln(out, st.Success.Render("✓ Updated "+p))
	}
	for _, p := range rep.Skipped {
		fmt.Fprintln(out, st.Warning.Render("• Skipped "+p+" (not in template)"))
	}

	if errors.Is(err, engine.ErrCancelled) {
		fmt.Fprintln(out, st.Warning.Render("✖ Upgrade cancelled"))
		return nil
	}
	if err != nil {
		return err
	}

	if len(rep.Selected) == 0 {
		fmt.Fprintln(out, st.Help.Render("No files selected; nothing to upgrade."))
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, st.Highlight.Render(fmt.Sprintf("✓ Upgraded %d file(s) successfully!", rep.Count())))

	if len(rep.Unresolved) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, st.Warning.Render("These files contain placeholders to replace with your app's values:"))
		fmt.Fprint(out, utils.RenderFileTree(
			utils.BuildFileTree(rep.Upgraded),
			utils.TreeOptions{
				Emoji:  sess.Emoji,
				Indent: "  ",
				Annotate: func(p string) string {
					if tokens := rep.Unresolved[p]; len(tokens) > 0 {
						return "(" + strings.Join(tokens, ", ") + ")"
					}
					return ""
				},
			},
		))
	}
	return nil
}

// upgradeSelector decides which choices are prompted for.
func upgradeSelector(sess *app.Session, yes bool, only []string) engine.Selector {
	var files prompt.FileSelector = prompt.Only(only)
	if sess.Interactive && len(only) == 0 {
		files = sess.Prompter()
	}
	var confirm prompt.Confirmer
	switch {
	case yes:
		confirm = prompt.AutoConfirm{}
	case sess.Interactive:
		confirm = sess.Prompter()
	default:
		confirm = prompt.RequireYes{}
	}
	return prompt.Combine(files, confirm)
}

// normalizePaths turns user-typed paths such as ./next.config.ts into manifest form.
func normalizePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, path.Clean(filepath.ToSlash(strings.TrimSpace(p))))
	}
	return out
}
