// Package blockdev classifies a block device's physical transport and
// link characteristics by walking the sysfs device-topology tree.
package blockdev

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Transport is the bus technology connecting the storage device.
type Transport string

const (
	TransportSATA    Transport = "SATA"
	TransportNVMe    Transport = "NVMe"
	TransportUSB     Transport = "USB"
	TransportSAS     Transport = "SAS"
	TransportUnknown Transport = "unknown"
)

// Info describes the resolved interface of a device. Generation and
// Speed stay empty whenever an attribute cannot be read; transport
// classification is never affected by that.
type Info struct {
	Transport  Transport
	Generation string
	Speed      string
}

// Inspector resolves device transport facts from a sysfs-shaped tree.
// The roots are configurable so tests can point it at a fixture tree.
type Inspector struct {
	ClassBlockRoot string // per-device entries, partitions included
	BlockRoot      string // whole-device entries
	ATALinkRoot    string // SATA link attribute entries
}

func NewInspector() *Inspector {
	return &Inspector{
		ClassBlockRoot: "/sys/class/block",
		BlockRoot:      "/sys/block",
		ATALinkRoot:    "/sys/class/ata_link",
	}
}

var partitionSuffix = regexp.MustCompile(`p?\d+$`)

// Resolve classifies the device backing devicePath (e.g. /dev/sda1).
// A device that cannot be located in the topology yields TransportUnknown
// without an error; errors are reserved for empty input.
func (ins *Inspector) Resolve(devicePath string) (Info, error) {
	name := filepath.Base(devicePath)
	if name == "" || name == "." || name == "/" {
		return Info{Transport: TransportUnknown}, &ResolveError{Device: devicePath, Reason: "no device name"}
	}

	base := ins.wholeDeviceName(name)

	blockPath := filepath.Join(ins.ClassBlockRoot, base)
	if !exists(blockPath) {
		blockPath = filepath.Join(ins.BlockRoot, base)
		if !exists(blockPath) {
			return Info{Transport: TransportUnknown}, nil
		}
	}

	canonical, err := filepath.EvalSymlinks(blockPath)
	if err != nil {
		return Info{Transport: TransportUnknown}, nil
	}

	info := Info{Transport: classify(base, canonical)}

	switch info.Transport {
	case TransportSATA:
		info.Generation, info.Speed = ins.sataLink(name)
	case TransportNVMe:
		info.Generation, info.Speed = ins.pcieLink(canonical)
	case TransportUSB:
		info.Generation, info.Speed = ins.usbLink(canonical)
	}

	return info, nil
}

// wholeDeviceName maps a partition name to its parent whole-device name.
// Non-partitions are returned unchanged.
func (ins *Inspector) wholeDeviceName(name string) string {
	if !exists(filepath.Join(ins.ClassBlockRoot, name, "partition")) {
		return name
	}

	entry := filepath.Join(ins.ClassBlockRoot, name)
	if isSymlink(entry) {
		if real, err := filepath.EvalSymlinks(entry); err == nil {
			return filepath.Base(filepath.Dir(real))
		}
		return name
	}
	return partitionSuffix.ReplaceAllString(name, "")
}

// classify applies the ordered transport tests. The nvme name prefix wins
// over every substring test; the substring order itself is significant
// (a USB-attached ATA bridge must classify as USB).
func classify(base, canonical string) Transport {
	if strings.HasPrefix(base, "nvme") {
		return TransportNVMe
	}
	switch {
	case strings.Contains(canonical, "usb"):
		return TransportUSB
	case strings.Contains(canonical, "ata"):
		return TransportSATA
	case strings.Contains(canonical, "nvme"):
		return TransportNVMe
	case strings.Contains(canonical, "sas"):
		return TransportSAS
	}
	return TransportUnknown
}

// sataLink reads the signaling rate of the ATA link behind the original
// (non-partition-stripped) device entry. Every failure degrades to empty
// generation/speed.
func (ins *Inspector) sataLink(name string) (gen, speed string) {
	target, err := os.Readlink(filepath.Join(ins.BlockRoot, name))
	if err != nil {
		return "", ""
	}

	_, after, found := strings.Cut(target, "/ata")
	if !found {
		return "", ""
	}
	linkID, _, _ := strings.Cut(after, "/")
	if linkID == "" {
		return "", ""
	}

	raw, ok := readAttr(filepath.Join(ins.ATALinkRoot, "link"+linkID, "sata_spd"))
	if !ok {
		return "", ""
	}
	return SATAGeneration(raw)
}

// SATAGeneration maps a raw sata_spd value ("3.0 Gbps") to a generation
// label and nominal throughput. Unmapped values pass through verbatim as
// both fields.
func SATAGeneration(raw string) (gen, speed string) {
	switch {
	case strings.Contains(raw, "1.5"):
		return "1", "150 MB/s"
	case strings.Contains(raw, "3.0"):
		return "2", "300 MB/s"
	case strings.Contains(raw, "6.0"):
		return "3", "600 MB/s"
	}
	return raw, raw
}

var pciAddress = regexp.MustCompile(`^[0-9a-fA-F]{4}:[0-9a-fA-F]{2}:[0-9a-fA-F]{2}\.[0-9a-fA-F]$`)

// pcieLink walks the canonical path for the PCI device enclosing an NVMe
// namespace and reads its negotiated link speed and width.
func (ins *Inspector) pcieLink(canonical string) (gen, speed string) {
	segments := strings.Split(canonical, string(filepath.Separator))

	pciDir := ""
	for i, seg := range segments {
		if pciAddress.MatchString(seg) {
			pciDir = strings.Join(segments[:i+1], string(filepath.Separator))
			break
		}
	}
	if pciDir == "" {
		return "", ""
	}

	rawSpeed, ok := readAttr(filepath.Join(pciDir, "current_link_speed"))
	if !ok {
		return "", ""
	}
	rawWidth, ok := readAttr(filepath.Join(pciDir, "current_link_width"))
	if !ok {
		return "", ""
	}
	return PCIeGeneration(rawSpeed, rawWidth)
}

// PCIeGeneration maps a current_link_speed value ("8.0 GT/s PCIe") and a
// lane width to a generation label and an aggregate bandwidth string.
func PCIeGeneration(rawSpeed, width string) (gen, speed string) {
	rawSpeed, _, _ = strings.Cut(rawSpeed, " PCIe")
	rawSpeed = strings.TrimSpace(rawSpeed)

	fields := strings.Fields(rawSpeed)
	if len(fields) == 0 {
		return "", ""
	}
	gts, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return "", ""
	}

	var label string
	switch gts {
	case 2.5:
		label = "PCIe Gen1.0"
	case 5:
		label = "PCIe Gen2.0"
	case 8:
		label = "PCIe Gen3.0"
	case 16:
		label = "PCIe Gen4.0"
	case 32:
		label = "PCIe Gen5.0"
	case 64:
		label = "PCIe Gen6.0"
	case 128:
		label = "PCIe Gen7.0"
	case 256:
		label = "PCIe Gen8.0"
	default:
		label = rawSpeed
	}

	gen = label + "x" + width
	if lanes, err := strconv.ParseFloat(width, 64); err == nil {
		speed = strconv.FormatFloat(gts*lanes, 'f', 0, 64) + " GB/s"
	}
	return gen, speed
}

// usbLink walks upward from the canonical device path, bounded to ten
// ancestor levels, until a hub speed attribute is found.
func (ins *Inspector) usbLink(canonical string) (gen, speed string) {
	current := canonical
	for i := 0; i < 10; i++ {
		current = filepath.Dir(current)
		raw, ok := readAttr(filepath.Join(current, "speed"))
		if ok {
			return USBGeneration(raw)
		}
	}
	return "", ""
}

// USBGeneration classifies a device speed in Mbps against the USB spec
// revisions. Values beyond the table pass through verbatim.
func USBGeneration(raw string) (gen, speed string) {
	mbps, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, ""
	}

	switch {
	case mbps <= 1.5:
		gen = "1.0"
	case mbps <= 12:
		gen = "1.1"
	case mbps <= 480:
		gen = "2.0"
	case mbps <= 5000:
		gen = "3.2 Gen1x1"
	case mbps <= 10000:
		gen = "3.2 Gen2x1"
	case mbps <= 20000:
		gen = "3.2 Gen2x2"
	case mbps <= 40000:
		gen = "4.0 Gen3x2"
	case mbps <= 80000:
		gen = "4.0 Gen4x2"
	default:
		gen = raw
	}
	return gen, strconv.FormatFloat(mbps/8, 'f', -1, 64) + " MB/s"
}

// ResolveError reports a device path the inspector cannot even begin to
// classify.
type ResolveError struct {
	Device string
	Reason string
}

func (e *ResolveError) Error() string {
	return "resolving interface for " + e.Device + ": " + e.Reason
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isSymlink(path string) bool {
	fi, err := os.Lstat(path)
	return err == nil && fi.Mode()&os.ModeSymlink != 0
}

func readAttr(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}
