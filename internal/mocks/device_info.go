package mocks

import "github.com/benmeehan/geo-alarm/pkg/identity"

// StaticDeviceInfo is a DeviceInfoInterface with a fixed device ID.
type StaticDeviceInfo struct {
	ID string
}

func (d *StaticDeviceInfo) LoadDeviceInfo() error { return nil }
func (d *StaticDeviceInfo) GetDeviceID() string   { return d.ID }
func (d *StaticDeviceInfo) GetDeviceIdentity() *identity.Identity {
	return &identity.Identity{ID: d.ID}
}
