/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	serialping "github.com/allbin/go-serialping"
	"github.com/allbin/go-serialping/internal/tui/components"
	"github.com/allbin/go-serialping/internal/tui/models"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runPing(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.GetBool(keyList) {
		return listPorts(out, "", false)
	}

	req, err := requestFromConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := req.params.Validate(); err != nil {
		return err
	}

	ex := serialping.NewExchange(req.params, serialping.WithExchangeLogger(log.Logger))
	interactive := !viper.GetBool(keyPlain) && isTerminal(out)
	return ping(out, ex, req, interactive)
}

// ping runs one exchange and prints the outcome. With interactive set a
// spinner and progress bar cover the read window.
func ping(out io.Writer, ex *serialping.Exchange, req pingRequest, interactive bool) error {
	params := ex.Params()
	payload := serialping.EncodePayload(req.message, req.newline)

	fmt.Fprintln(out, components.FormatOpening(params))
	fmt.Fprintln(out, components.FormatPayload(payload))

	var (
		result *serialping.Result
		err    error
	)
	if interactive {
		result, err = models.RunExchangeView(out, ex, req.message, req.newline)
	} else {
		result, err = ex.Run(req.message, req.newline)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, components.FormatWrite(result, params.Timeout))
	fmt.Fprint(out, components.FormatResult(result))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
