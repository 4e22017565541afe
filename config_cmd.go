package main

import (
	"fmt"

	"github.com/captify-io/create-captify-app/app"
	"github.com/captify-io/create-captify-app/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(sess **app.Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change default settings",
		Long: fmt.Sprintf(`Show or change the defaults used when creating apps.

Settings are read from the config file, then overridden by %s_* environment
variables (e.g. %s_PORT) and finally by command-line flags.`, config.EnvPrefix, config.EnvPrefix),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every setting with its current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := *sess
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.Styles.Help.Render("# "+s.Store.Path()))
			for _, k := range config.Keys() {
				v, err := s.Store.Get(k)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s = %s\n", k, v)
			}
			return nil
		},
	}

	get := &cobra.Command{
		Use:       "get <key>",
		Short:     "Print the value of a setting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := (*sess).Store.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}

	set := &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change a setting and save it to the config file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *sess
			if err := s.Store.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := s.Store.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Styles.Success.Render(fmt.Sprintf("✓ Set %s = %s", args[0], args[1])))
			return nil
		},
	}

	cmd.AddCommand(list, get, set)
	return cmd
}
