package serialping

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes one serial device found on the system
type PortInfo struct {
	Name         string // base name, e.g. ttyACM0
	Path         string // device path, e.g. /dev/ttyACM0
	Description  string
	IsUSB        bool
	VendorID     string
	ProductID    string
	SerialNumber string
	Product      string
}

// detailedPorts is swapped out in tests.
var detailedPorts = enumerator.GetDetailedPortsList

// Regular expressions for different types of serial devices
var serialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
}

// ListPorts returns the serial ports present on the system, sorted by path.
// USB metadata comes from the platform enumerator; when it is unavailable
// the /dev directory is scanned by name instead.
func ListPorts() ([]PortInfo, error) {
	details, err := detailedPorts()
	if err != nil || len(details) == 0 {
		return scanDevPorts("/dev")
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, portInfoFromDetails(d))
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Path < ports[j].Path })
	return ports, nil
}

// GetPortInfo returns information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, portPath)
	}

	if details, err := detailedPorts(); err == nil {
		for _, d := range details {
			if samePort(d.Name, portPath) {
				info := portInfoFromDetails(d)
				info.Path = portPath
				return &info, nil
			}
		}
	}

	name := filepath.Base(portPath)
	return &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}, nil
}

func portInfoFromDetails(d *enumerator.PortDetails) PortInfo {
	path := d.Name
	if !strings.HasPrefix(path, "/") {
		path = filepath.Join("/dev", path)
	}
	name := filepath.Base(path)

	info := PortInfo{
		Name:         name,
		Path:         path,
		Description:  getPortDescription(name),
		IsUSB:        d.IsUSB,
		VendorID:     strings.ToLower(d.VID),
		ProductID:    strings.ToLower(d.PID),
		SerialNumber: d.SerialNumber,
		Product:      d.Product,
	}
	if info.Product != "" {
		info.Description = info.Product
	}
	return info
}

func samePort(enumerated, path string) bool {
	if enumerated == path {
		return true
	}
	a, errA := filepath.EvalSymlinks(enumerated)
	b, errB := filepath.EvalSymlinks(path)
	return errA == nil && errB == nil && a == b
}

// scanDevPorts lists character devices in dir whose names match a known
// serial driver. Virtual terminals and pseudo-terminals never match.
func scanDevPorts(dir string) ([]PortInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var ports []PortInfo
	for _, entry := range entries {
		name := entry.Name()
		if !matchesSerialPattern(name) {
			continue
		}

		fullPath := filepath.Join(dir, name)
		if !isCharacterDevice(fullPath) {
			continue
		}
		ports = append(ports, PortInfo{
			Name:        name,
			Path:        fullPath,
			Description: getPortDescription(name),
			IsUSB:       strings.HasPrefix(name, "ttyUSB") || strings.HasPrefix(name, "ttyACM"),
		})
	}

	sort.Slice(ports, func(i, j int) bool { return ports[i].Path < ports[j].Path })
	return ports, nil
}

func matchesSerialPattern(name string) bool {
	for _, pattern := range serialPatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}
