package report

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"diskmark/internal/volumes"
)

// Environment carries the host and target facts printed in the report
// footer. It is assembled once per run; fields that cannot be collected
// stay zero and render as "unknown".
type Environment struct {
	AppVersion string
	Date       time.Time
	OS         string

	Target     string
	TotalBytes uint64
	UsedBytes  uint64

	Device string
	Fstype string
}

// Collect gathers environment facts for a report on target. vol may be
// nil when the backing volume could not be resolved.
func Collect(appVersion, target string, vol *volumes.Volume) Environment {
	env := Environment{
		AppVersion: appVersion,
		Date:       time.Now(),
		Target:     target,
	}

	if info, err := host.Info(); err == nil {
		env.OS = fmt.Sprintf("%s %s [%s %s %s]",
			info.Platform, info.PlatformVersion,
			info.OS, info.KernelVersion, info.KernelArch)
	}

	if total, used, err := volumes.Usage(target); err == nil {
		env.TotalBytes = total
		env.UsedBytes = used
	}

	if vol != nil {
		env.Device = vol.Device
		env.Fstype = vol.Fstype
	}

	return env
}
