//go:build darwin

package platform

import (
	"diskmark/internal/blockdev"
	"diskmark/internal/volumes"
)

// darwinProvider has no device-topology tree to walk; interface facts
// always resolve as unknown.
type darwinProvider struct{}

func newProvider() Provider { return darwinProvider{} }

func (darwinProvider) ListVolumes() ([]volumes.Volume, error) {
	return volumes.List()
}

func (darwinProvider) ResolveInterface(string) (blockdev.Info, error) {
	return blockdev.Info{Transport: blockdev.TransportUnknown}, nil
}

func (darwinProvider) IOEngineName() string { return "posixaio" }
