/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	serialping "github.com/allbin/go-serialping"
	"github.com/allbin/go-serialping/internal/tui/styles"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all available serial ports on the system.

USB devices are shown with their product name, vendor/product IDs and
serial number when the system exposes them. Ports include:
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)
- And other platform-specific serial devices

Running "serialping --list" prints the same plain listing.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")
		return listPorts(cmd.OutOrStdout(), filterType, tableFormat)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

func listPorts(w io.Writer, filterType string, tableFormat bool) error {
	ports, err := serialping.ListPorts()
	if err != nil {
		return fmt.Errorf("listing ports: %w", err)
	}

	ports = filterPorts(ports, filterType)
	if tableFormat {
		renderTable(w, ports)
	} else {
		renderSimple(w, ports)
	}
	return nil
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []serialping.PortInfo, filterType string) []serialping.PortInfo {
	filterType = strings.ToLower(filterType)
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []serialping.PortInfo
	for _, port := range ports {
		name := strings.ToLower(port.Name)
		switch filterType {
		case "usb":
			if port.IsUSB || strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, port)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") && !strings.HasPrefix(name, "ttysac") {
				filtered = append(filtered, port)
			}
		case "arm":
			if strings.HasPrefix(name, "ttyama") {
				filtered = append(filtered, port)
			}
		}
	}
	return filtered
}

const (
	columnKeyPort   = "port"
	columnKeyType   = "type"
	columnKeyDesc   = "description"
	columnKeyUSBID  = "usbid"
	columnKeySerial = "serial"
)

// renderTable renders the port list as a static bordered table
func renderTable(w io.Writer, ports []serialping.PortInfo) {
	fmt.Fprintf(w, "Found %d serial port(s):\n\n", len(ports))
	if len(ports) == 0 {
		return
	}

	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 15),
		table.NewColumn(columnKeyType, "Type", 16),
		table.NewColumn(columnKeyDesc, "Description", 30),
		table.NewColumn(columnKeyUSBID, "VID:PID", 11),
		table.NewColumn(columnKeySerial, "Serial", 16),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, port := range ports {
		usbID := ""
		if port.VendorID != "" || port.ProductID != "" {
			usbID = port.VendorID + ":" + port.ProductID
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:   port.Name,
			columnKeyType:   getPortType(port.Name),
			columnKeyDesc:   port.Description,
			columnKeyUSBID:  usbID,
			columnKeySerial: port.SerialNumber,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(styles.HeaderStyle).
		WithBaseStyle(styles.CellStyle)

	fmt.Fprintln(w, t.View())
}

// renderSimple renders the port list one line per port
func renderSimple(w io.Writer, ports []serialping.PortInfo) {
	fmt.Fprintln(w, "Available serial ports:")
	for _, port := range ports {
		fmt.Fprintf(w, "- %s (%s) %s\n", port.Name, port.Description, port.Path)
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "(none detected)")
	}
}

// getPortType returns a more specific type classification for the port
func getPortType(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}
