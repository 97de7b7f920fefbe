//go:build linux

package platform

import (
	"diskmark/internal/blockdev"
	"diskmark/internal/volumes"
)

type linuxProvider struct {
	inspector *blockdev.Inspector
}

func newProvider() Provider {
	return &linuxProvider{inspector: blockdev.NewInspector()}
}

func (p *linuxProvider) ListVolumes() ([]volumes.Volume, error) {
	return volumes.List()
}

func (p *linuxProvider) ResolveInterface(devicePath string) (blockdev.Info, error) {
	return p.inspector.Resolve(devicePath)
}

func (p *linuxProvider) IOEngineName() string { return "libaio" }
