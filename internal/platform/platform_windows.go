//go:build windows

package platform

import (
	"diskmark/internal/blockdev"
	"diskmark/internal/volumes"
)

type windowsProvider struct{}

func newProvider() Provider { return windowsProvider{} }

func (windowsProvider) ListVolumes() ([]volumes.Volume, error) {
	return volumes.List()
}

func (windowsProvider) ResolveInterface(string) (blockdev.Info, error) {
	return blockdev.Info{Transport: blockdev.TransportUnknown}, nil
}

func (windowsProvider) IOEngineName() string { return "windowsaio" }
