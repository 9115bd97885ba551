package toolserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bonolab/nsobridge/nso"
)

// newNSOStub serves a two-device NSO RESTCONF fixture and counts requests.
func newNSOStub(t *testing.T) (*nso.Devices, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/restconf/data/tailf-ncs:devices/ned-ids":
			w.Write([]byte(`{"tailf-ncs:ned-ids":{"ned-id":[{"id":"cisco-ios-cli-3.0"},{"id":"cisco-nx-cli-3.0"}]}}`))
		case "/restconf/data/tailf-ncs:devices/device=ios-0/platform":
			w.Write([]byte(`{"tailf-ncs:platform":{"name":"IOS","version":"15.2","model":"IOSv"}}`))
		default:
			http.Error(w, `{"ietf-restconf:errors":{"error":[{"error-message":"not found"}]}}`, http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	client := nso.NewClient(nso.Config{
		Scheme:   u.Scheme,
		Address:  u.Hostname(),
		Port:     port,
		Username: "admin",
		Password: "admin",
		Timeout:  2 * time.Second,
	})
	return nso.NewDevices(client), &calls
}

func newDeviceDispatcher(t *testing.T) (*Dispatcher, *Registry, *atomic.Int64) {
	t.Helper()

	devices, calls := newNSOStub(t)
	reg := NewRegistry()
	require.NoError(t, RegisterDeviceTools(reg, devices))
	return NewDispatcher(reg, nil), reg, calls
}

func TestDeviceToolsDiscovery(t *testing.T) {
	_, reg, _ := newDeviceDispatcher(t)

	descs := reg.List()
	require.Len(t, descs, 2)
	require.Equal(t, "get_device_ned_ids", descs[0].Name)
	require.Equal(t, "get_device_platform", descs[1].Name)
	require.Equal(t, []string{"device_name"}, descs[1].Params.Required)
	require.Equal(t, "string", descs[1].Params.Properties["device_name"].Type)
}

func TestGetDeviceNedIDs(t *testing.T) {
	disp, _, calls := newDeviceDispatcher(t)

	res := disp.Invoke(context.Background(), "get_device_ned_ids", nil)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, []string{"cisco-ios-cli-3.0", "cisco-nx-cli-3.0"}, res.Data)
	require.Equal(t, int64(1), calls.Load())
}

func TestGetDevicePlatform(t *testing.T) {
	disp, _, _ := newDeviceDispatcher(t)

	res := disp.Invoke(context.Background(), "get_device_platform", map[string]any{"device_name": "ios-0"})
	require.Equal(t, StatusSuccess, res.Status)

	platform, ok := res.Data.(*nso.Platform)
	require.True(t, ok)
	require.Equal(t, "IOS", platform.Name)
	require.Equal(t, "15.2", platform.Version)
	require.Equal(t, map[string]any{"device_name": "ios-0"}, res.Metadata["arguments"])
}

func TestGetDevicePlatformUnknownDevice(t *testing.T) {
	disp, _, _ := newDeviceDispatcher(t)

	res := disp.Invoke(context.Background(), "get_device_platform", map[string]any{"device_name": "missing"})
	require.Equal(t, StatusError, res.Status)
	require.Contains(t, res.ErrorMessage, "404")
}

func TestGetDevicePlatformMissingArgumentSkipsBackend(t *testing.T) {
	disp, _, calls := newDeviceDispatcher(t)

	res := disp.Invoke(context.Background(), "get_device_platform", map[string]any{})
	require.Equal(t, StatusError, res.Status)
	require.Zero(t, calls.Load())
}
