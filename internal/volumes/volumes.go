// Package volumes enumerates mounted filesystems and their usage.
package volumes

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// ErrNoVolumes means no mountable volume was detected on the host.
var ErrNoVolumes = errors.New("no volumes detected")

// Volume is one mounted filesystem.
type Volume struct {
	Device     string
	Mountpoint string
	Fstype     string

	Total   uint64
	Used    uint64
	Free    uint64
	Percent float64
}

// List returns the mounted physical volumes, sorted by device name.
// Pseudo filesystems are skipped.
func List() ([]Volume, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}

	var vols []Volume
	for _, p := range partitions {
		if p.Fstype == "" || strings.HasPrefix(p.Fstype, "tmp") || p.Fstype == "devtmpfs" || p.Fstype == "squashfs" {
			continue
		}
		v := Volume{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			Fstype:     p.Fstype,
		}
		if usage, err := disk.Usage(p.Mountpoint); err == nil {
			v.Total = usage.Total
			v.Used = usage.Used
			v.Free = usage.Free
			v.Percent = usage.UsedPercent
		}
		vols = append(vols, v)
	}

	if len(vols) == 0 {
		return nil, ErrNoVolumes
	}

	sort.Slice(vols, func(i, j int) bool { return vols[i].Device < vols[j].Device })
	return vols, nil
}

// FindForPath returns the volume whose mountpoint encloses path, picking
// the longest matching mountpoint when several do.
func FindForPath(path string) (*Volume, error) {
	vols, err := List()
	if err != nil {
		return nil, err
	}
	return findForPath(path, vols), nil
}

func findForPath(path string, vols []Volume) *Volume {
	path = NormalizePath(path)

	var best *Volume
	bestLen := -1
	for i := range vols {
		mount := vols[i].Mountpoint
		if !strings.HasSuffix(mount, string(os.PathSeparator)) {
			mount += string(os.PathSeparator)
		}
		if strings.HasPrefix(path, mount) && len(mount) > bestLen {
			best = &vols[i]
			bestLen = len(mount)
		}
	}
	return best
}

// NormalizePath makes path absolute with a trailing separator, the form
// fio expects for --directory.
func NormalizePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if !strings.HasSuffix(path, string(os.PathSeparator)) {
		path += string(os.PathSeparator)
	}
	return path
}

// Usage returns the usage stats of the filesystem containing path.
func Usage(path string) (total, used uint64, err error) {
	u, err := disk.Usage(path)
	if err != nil {
		return 0, 0, err
	}
	return u.Total, u.Used, nil
}
