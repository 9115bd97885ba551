package toolserver

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/bonolab/nsobridge/nso"
)

type platformParams struct {
	DeviceName string `mapstructure:"device_name"`
}

// RegisterDeviceTools registers the built-in NSO device tools:
// get_device_ned_ids and get_device_platform.
func RegisterDeviceTools(registry *Registry, devices *nso.Devices) error {
	err := registry.Register(Descriptor{
		Name:        "get_device_ned_ids",
		Description: "Retrieve the available Network Element Driver (NED) IDs in Cisco NSO",
		Params:      Schema{Type: "object"},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		return devices.NedIDs(ctx)
	})
	if err != nil {
		return err
	}

	return registry.Register(Descriptor{
		Name:        "get_device_platform",
		Description: "Retrieve platform information for a specific device in Cisco NSO. Requires a device_name parameter (e.g. 'ios-0', 'iosxr-1', 'nx-2').",
		Params: Schema{
			Type: "object",
			Properties: map[string]Property{
				"device_name": {Type: "string", Description: "Name of the device to query"},
			},
			Required: []string{"device_name"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var params platformParams
		if err := mapstructure.Decode(args, &params); err != nil {
			return nil, fmt.Errorf("decoding arguments: %w", err)
		}
		return devices.DevicePlatform(ctx, params.DeviceName)
	})
}
