package renderer

import (
	"fmt"
	"strings"

	"github.com/vial-kb/vial-gui/internal/devices"
)

const (
	// Tree drawing characters
	treeBranch     = "├──"
	treeLastBranch = "└──"

	msgNoDevices = "No devices found."
)

// DeviceRenderer defines the interface for rendering device listings.
type DeviceRenderer interface {
	RenderDevices(devs []devices.Device) string
}

// VendorTreeRenderer groups devices under their vendor ID.
type VendorTreeRenderer struct{}

// RenderDevices renders devs as a vendor tree. Vendors keep the order in which they first appear.
func (r *VendorTreeRenderer) RenderDevices(devs []devices.Device) string {
	if len(devs) == 0 {
		return msgNoDevices + "\n"
	}

	var order []uint16
	groups := make(map[uint16][]devices.Device)
	for _, d := range devs {
		if _, ok := groups[d.VendorID]; !ok {
			order = append(order, d.VendorID)
		}
		groups[d.VendorID] = append(groups[d.VendorID], d)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Devices: %d\n", len(devs)))
	builder.WriteString(strings.Repeat("=", 50) + "\n")

	for _, vendor := range order {
		builder.WriteString(fmt.Sprintf("vendor %04x\n", vendor))
		group := groups[vendor]
		for i, d := range group {
			connector := treeBranch
			if i == len(group)-1 {
				connector = treeLastBranch
			}
			builder.WriteString(fmt.Sprintf("%s %04x %s %s\n", connector, d.ProductID, d.Name, d.Path))
		}
	}

	return builder.String()
}
