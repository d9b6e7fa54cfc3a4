/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	serialping "github.com/allbin/go-serialping"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfgErr  error
)

// rootCmd sends one message and prints the response
var rootCmd = &cobra.Command{
	Use:   "serialping",
	Short: "Send a message over a serial port and print the response",
	Long: `Send a short message to a serial device and print whatever it answers
within the timeout, as text and as hex.

The port is opened, the device gets 200ms to settle (many boards reset on
open), the message is written once and the response is collected until the
timeout expires, 1024 bytes have arrived or the device hangs up.

Settings come from flags, SERIALPING_* environment variables (e.g.
SERIALPING_PORT, SERIALPING_DATA_BITS) or a YAML config file, in that order.

Example usage:
  serialping --port=/dev/ttyACM0
  serialping -p /dev/ttyUSB0 -b 9600 --message="AT" --timeout=500ms
  serialping --port=/dev/ttyS1 --data-bits=7 --parity=even --stop-bits=2
  serialping --list`,
	Args:              usageArgs(cobra.NoArgs),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRun,
	RunE:              runPing,
}

// Execute runs the command line and returns the process exit status
func Execute() int {
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return ExitOK
	}

	code := exitCode(err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(os.Stderr, hint)
	}
	if code == ExitUsage {
		fmt.Fprintln(os.Stderr)
		fmt.Fprint(os.Stderr, cmd.UsageString())
	}
	return code
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	p := serialping.DefaultParams()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/serialping/config.yaml)")
	rootCmd.PersistentFlags().BoolP(keyVerbose, "v", false, "Log debug details to stderr")

	rootCmd.Flags().StringP(keyPort, "p", p.Device, "Serial device path")
	rootCmd.Flags().IntP(keyBaud, "b", p.BaudRate, "Baud rate")
	rootCmd.Flags().Int(keyDataBits, p.DataBits, "Data bits: 5, 6, 7 or 8")
	rootCmd.Flags().String(keyStopBits, p.StopBits.String(), "Stop bits: 1, 1.5 or 2")
	rootCmd.Flags().String(keyParity, p.Parity.String(), "Parity: none, odd, even, mark, space")
	rootCmd.Flags().StringP(keyTimeout, "t", defaultTimeout, "Response window, as a duration or in milliseconds")
	rootCmd.Flags().StringP(keyMessage, "m", defaultMessage, "Text to send")
	rootCmd.Flags().Bool(keyNewline, true, "Append a newline to the message")
	rootCmd.Flags().BoolP(keyList, "l", false, "List available serial ports and exit")
	rootCmd.Flags().Bool(keyPlain, false, "Plain output, no progress display")

	setDefaults(viper.GetViper())
	viper.BindPFlags(rootCmd.PersistentFlags())
	viper.BindPFlags(rootCmd.Flags())
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	viper.SetEnvPrefix("SERIALPING")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return
		}
		viper.AddConfigPath(filepath.Join(dir, "serialping"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			cfgErr = fmt.Errorf("%w: reading config: %w", serialping.ErrConfig, err)
		}
	}
}

func preRun(cmd *cobra.Command, args []string) error {
	setupLogging(cmd.ErrOrStderr(), viper.GetBool(keyVerbose))
	return cfgErr
}

// usageArgs marks argument validation failures as usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}
