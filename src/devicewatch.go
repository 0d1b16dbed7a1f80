package nrsc5

import (
	"context"
	"fmt"

	"github.com/jochenvg/go-udev"
)

// rtlsdrVendorID and rtlsdrProductIDs identify the handful of USB VID/PID
// pairs RTL2832U-based dongles commonly enumerate under, enough to
// auto-select a newly plugged-in device without the caller hardcoding a
// bus path.
const rtlsdrVendorID = "0bda"

var rtlsdrProductIDs = map[string]bool{
	"2832": true,
	"2838": true,
}

// DeviceEvent reports one USB hotplug transition for an RTL-SDR-shaped
// device.
type DeviceEvent struct {
	Added    bool
	DevPath  string
	Serial   string
}

// WatchDevices monitors the udev netlink socket for RTL-SDR USB
// attach/detach events until ctx is cancelled, sending one DeviceEvent per
// transition on the returned channel.
func WatchDevices(ctx context.Context) (<-chan DeviceEvent, error) {
	u := udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")
	if mon == nil {
		return nil, fmt.Errorf("nrsc5: opening udev monitor")
	}
	if err := mon.FilterAddMatchSubsystem("usb"); err != nil {
		return nil, fmt.Errorf("nrsc5: filtering udev monitor: %w", err)
	}

	deviceCh, err := mon.DeviceChan(ctx)
	if err != nil {
		return nil, fmt.Errorf("nrsc5: starting udev monitor: %w", err)
	}

	out := make(chan DeviceEvent)
	go func() {
		defer close(out)
		for dev := range deviceCh {
			if dev.Properties()["ID_VENDOR_ID"] != rtlsdrVendorID {
				continue
			}
			if !rtlsdrProductIDs[dev.Properties()["ID_MODEL_ID"]] {
				continue
			}
			out <- DeviceEvent{
				Added:   dev.Action() == "add",
				DevPath: dev.Devpath(),
				Serial:  dev.Properties()["ID_SERIAL_SHORT"],
			}
		}
	}()
	return out, nil
}
