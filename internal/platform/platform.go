// Package platform abstracts the host-specific pieces of a benchmark
// run: volume enumeration, interface resolution, and the fio I/O engine
// to use. One implementation exists per target operating system and is
// selected at build time.
package platform

import (
	"diskmark/internal/blockdev"
	"diskmark/internal/volumes"
)

// Provider is the capability surface a benchmark run needs from the host.
type Provider interface {
	// ListVolumes enumerates mounted volumes eligible for testing.
	ListVolumes() ([]volumes.Volume, error)

	// ResolveInterface classifies the transport of the device backing
	// devicePath. Implementations degrade to TransportUnknown rather
	// than fail.
	ResolveInterface(devicePath string) (blockdev.Info, error)

	// IOEngineName is the fio --ioengine value for this host.
	IOEngineName() string
}

// New returns the provider for the build's target operating system.
func New() Provider {
	return newProvider()
}
