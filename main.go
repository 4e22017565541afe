package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/captify-io/create-captify-app/app"
	"github.com/captify-io/create-captify-app/app/ui"
	"github.com/captify-io/create-captify-app/internal/config"
	"github.com/captify-io/create-captify-app/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set via linker flags during build.
var Version = "v0.1.0"

// options carries everything a run needs from the outside world.
type options struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	// workDir defaults to the current directory.
	workDir string
	// interactive overrides terminal detection when set.
	interactive *bool
	// clipboard receives next-step commands when copy-next-steps is on.
	clipboard func(string) error
}

func defaultOptions() *options {
	return &options{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		getenv:    os.Getenv,
		clipboard: clipboard.WriteAll,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], defaultOptions())
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, o *options) int {
	root := newRootCmd(o)
	root.SetArgs(args)
	root.SetIn(o.stdin)
	root.SetOut(o.stdout)
	root.SetErr(o.stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		color := ui.ShouldUseColor(o.stderr, o.getenv)
		reportError(o.stderr, app.NewStyles(ui.NewRenderer(o.stderr, color)), err)
	}
	return exitCode(err)
}

// newSession builds the run state once flags are parsed.
func newSession(cmd *cobra.Command, o *options, configPath string, verbose bool) (*app.Session, error) {
	log := logging.New(o.stderr, verbose)

	if configPath == "" {
		var err error
		if configPath, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	store, err := config.New(configPath)
	if err != nil {
		return nil, err
	}
	if err := store.BindFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	workDir := o.workDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return nil, err
		}
	}

	interactive := ui.IsTerminal(o.stdin)
	if o.interactive != nil {
		interactive = *o.interactive
	}
	color := ui.ShouldUseColor(o.stdout, o.getenv)

	sess := &app.Session{
		Log:         log,
		Store:       store,
		Config:      store.Config(),
		Stdin:       o.stdin,
		Stdout:      o.stdout,
		Stderr:      o.stderr,
		WorkDir:     workDir,
		Interactive: interactive,
		Color:       color,
		Emoji:       ui.ShouldUseEmoji(o.stdout, o.getenv),
		Accessible:  o.getenv("ACCESSIBLE") != "",
		Width:       ui.Width(o.stdout),
		Styles:      app.NewStyles(ui.NewRenderer(o.stdout, color)),
	}
	log.Debug("session ready",
		zap.String("config", configPath),
		zap.String("workdir", workDir),
		zap.Bool("interactive", interactive))
	return sess, nil
}

func newRootCmd(o *options) *cobra.Command {
	var (
		verbose    bool
		configPath string
		sess       *app.Session
	)

	root := &cobra.Command{
		Use:   "create-captify-app [project-name]",
		Short: "Create a new Captify plugin application",
		Long: `Create a new Captify plugin application from the bundled Next.js template.

Run without arguments to be asked for the project name, port and description.
Run "create-captify-app upgrade" inside an existing app to refresh its
build and style configuration from the current template.`,
		Example: `  create-captify-app my-app --port 3002
  create-captify-app upgrade --yes --only next.config.ts`,
		Args:          cobra.MaximumNArgs(1),
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			sess, err = newSession(cmd, o, configPath, verbose)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if sess != nil {
				_ = sess.Log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, sess, args, o.clipboard)
		},
	}
	root.SetVersionTemplate("create-captify-app {{.Version}}\n")
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/create-captify-app/config.yaml)")
	pf.String(config.KeyTemplateDir, "", "use the template in this directory instead of the bundled one")

	f := root.Flags()
	f.IntP(config.KeyPort, "p", 3002, "development port for the app (3000-9999)")
	f.StringP(config.KeyDescription, "d", "", "app description")
	f.Bool(config.KeyAtomic, false, "build the project in a staging directory and move it into place when complete")

	root.AddCommand(
		newUpgradeCmd(&sess),
		newConfigCmd(&sess),
	)
	return root
}
