package devices

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// DefaultSysfsRoot is where the kernel exposes hidraw devices.
const DefaultSysfsRoot = "/sys"

// Device describes one hidraw node.
type Device struct {
	Path      string
	Name      string
	VendorID  uint16
	ProductID uint16
}

// String renders the device the way the device list shows it.
func (d Device) String() string {
	return fmt.Sprintf("%s (%04x:%04x) %s", d.Name, d.VendorID, d.ProductID, d.Path)
}

// Scanner defines the interface for enumerating attached keyboards.
type Scanner interface {
	Scan(ctx context.Context) ([]Device, error)
}

// HIDScanner implements Scanner by reading hidraw entries from sysfs.
type HIDScanner struct {
	sysfsRoot string
	devRoot   string
}

// NewHIDScanner creates a HIDScanner rooted at sysfsRoot, or DefaultSysfsRoot when empty.
func NewHIDScanner(sysfsRoot string) *HIDScanner {
	if sysfsRoot == "" {
		sysfsRoot = DefaultSysfsRoot
	}
	return &HIDScanner{sysfsRoot: sysfsRoot, devRoot: "/dev"}
}

// Scan lists hidraw devices sorted by name. Entries whose metadata cannot be read are skipped.
func (s *HIDScanner) Scan(ctx context.Context) ([]Device, error) {
	classDir := filepath.Join(s.sysfsRoot, "class", "hidraw")
	entries, err := os.ReadDir(classDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "failed to read %q", classDir)
	}

	var found []Device
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		default:
		}

		dev, err := readUevent(filepath.Join(classDir, entry.Name(), "device", "uevent"))
		if err != nil {
			continue
		}
		dev.Path = filepath.Join(s.devRoot, entry.Name())
		found = append(found, dev)
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Name != found[j].Name {
			return found[i].Name < found[j].Name
		}
		return found[i].Path < found[j].Path
	})
	return found, nil
}

// readUevent parses HID_NAME and HID_ID (bus:vendor:product in hex) from a uevent file.
func readUevent(path string) (Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return Device{}, eris.Wrapf(err, "failed to open %q", path)
	}
	defer f.Close()

	var dev Device
	var haveID bool
	lines := bufio.NewScanner(f)
	for lines.Scan() {
		key, value, ok := strings.Cut(lines.Text(), "=")
		if !ok {
			continue
		}

		switch key {
		case "HID_NAME":
			dev.Name = value
		case "HID_ID":
			parts := strings.Split(value, ":")
			if len(parts) != 3 {
				return Device{}, eris.Errorf("malformed HID_ID %q", value)
			}
			vendor, err := strconv.ParseUint(parts[1], 16, 16)
			if err != nil {
				return Device{}, eris.Wrapf(err, "malformed vendor in %q", value)
			}
			product, err := strconv.ParseUint(parts[2], 16, 16)
			if err != nil {
				return Device{}, eris.Wrapf(err, "malformed product in %q", value)
			}
			dev.VendorID, dev.ProductID = uint16(vendor), uint16(product)
			haveID = true
		}
	}
	if err := lines.Err(); err != nil {
		return Device{}, eris.Wrapf(err, "failed to read %q", path)
	}
	if !haveID {
		return Device{}, eris.Errorf("%q has no HID_ID", path)
	}

	return dev, nil
}
