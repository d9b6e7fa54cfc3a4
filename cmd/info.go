/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	serialping "github.com/allbin/go-serialping"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  serialping info /dev/ttyUSB0
  serialping info /dev/ttyACM0

For USB devices, this displays vendor/product IDs, the product name and the
serial number reported by the system.`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := serialping.GetPortInfo(args[0])
		if err != nil {
			return fmt.Errorf("%w: %w", serialping.ErrOpen, err)
		}
		printPortInfo(cmd.OutOrStdout(), info)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printPortInfo(w io.Writer, info *serialping.PortInfo) {
	fmt.Fprintf(w, "Port Information: %s\n\n", info.Path)
	fmt.Fprintf(w, "  Name:        %s\n", info.Name)
	fmt.Fprintf(w, "  Type:        %s\n", getPortType(info.Name))
	fmt.Fprintf(w, "  Description: %s\n", info.Description)

	if !info.IsUSB && info.VendorID == "" && info.ProductID == "" {
		return
	}

	fmt.Fprintln(w, "\nUSB Device Information:")
	if info.VendorID != "" {
		fmt.Fprintf(w, "  Vendor ID:    %s\n", info.VendorID)
	}
	if info.ProductID != "" {
		fmt.Fprintf(w, "  Product ID:   %s\n", info.ProductID)
	}
	if info.Product != "" {
		fmt.Fprintf(w, "  Product:      %s\n", info.Product)
	}
	if info.SerialNumber != "" {
		fmt.Fprintf(w, "  Serial:       %s\n", info.SerialNumber)
	}
}
