package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/captify-io/create-captify-app/app"
	"github.com/captify-io/create-captify-app/app/engine"
)

// exitCode maps a command error to the process exit status. Cancelled
// upgrades return nil before reaching here and exit 0.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// reportError prints err with the ✖ prefix, listing per-file failures.
func reportError(w io.Writer, st app.Styles, err error) {
	var (
		partial    *engine.PartialUpgradeError
		validation *engine.ValidationError
	)
	switch {
	case errors.Is(err, engine.ErrCancelled):
		fmt.Fprintln(w, st.Warning.Render("✖ Cancelled"))
	case errors.As(err, &partial):
		fmt.Fprintln(w, st.Error.Render("✖ "+partial.Error()))
		for _, f := range partial.Failures {
			fmt.Fprintf(w, "  %s: %v\n", f.Path, f.Err)
		}
	case errors.As(err, &validation):
		fmt.Fprintln(w, st.Error.Render("✖ "+err.Error()))
		fmt.Fprintln(w, st.Help.Render("Run 'create-captify-app --help' for usage."))
	default:
		fmt.Fprintln(w, st.Error.Render("✖ "+err.Error()))
	}
}
