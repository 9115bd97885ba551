package nso

import (
	"context"
	"fmt"
	"net/url"
)

// Devices wraps the device-related RESTCONF operations of NSO.
type Devices struct {
	client *Client
}

// NewDevices creates a Devices helper bound to the given client.
func NewDevices(client *Client) *Devices {
	return &Devices{client: client}
}

// Platform describes a managed device as reported by
// /tailf-ncs:devices/device/platform.
type Platform struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// NedIDs returns the Network Element Driver identifiers configured in NSO.
func (d *Devices) NedIDs(ctx context.Context) ([]string, error) {
	doc, err := d.client.Get(ctx, "/restconf/data/tailf-ncs:devices/ned-ids")
	if err != nil {
		return nil, err
	}

	ids := doc.Get("tailf-ncs:ned-ids.ned-id.#.id")
	if !ids.Exists() {
		return nil, fmt.Errorf("%w: missing ned-id list", ErrInvalidResponse)
	}

	var out []string
	for _, id := range ids.Array() {
		out = append(out, id.String())
	}
	return out, nil
}

// DevicePlatform returns the platform record of a single managed device.
func (d *Devices) DevicePlatform(ctx context.Context, deviceName string) (*Platform, error) {
	if deviceName == "" {
		return nil, fmt.Errorf("device name is required")
	}

	path := fmt.Sprintf("/restconf/data/tailf-ncs:devices/device=%s/platform", url.PathEscape(deviceName))
	doc, err := d.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	platform := doc.Get("tailf-ncs:platform")
	if !platform.Exists() {
		return nil, fmt.Errorf("%w: missing platform container", ErrInvalidResponse)
	}

	return &Platform{
		Name:         platform.Get("name").String(),
		Version:      platform.Get("version").String(),
		Model:        platform.Get("model").String(),
		SerialNumber: platform.Get("serial-number").String(),
	}, nil
}
