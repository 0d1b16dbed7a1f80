// Command nrsc5-scan sweeps the FM broadcast band over an rtl_tcp
// connection, reporting which 200 kHz channels achieve HD Radio sync
// within a short dwell time.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/hdreceiver/nrsc5go/src"
)

const (
	fmBandStartHz = 87900000
	fmBandEndHz   = 107900000
	fmChannelStepHz = 200000
)

func main() {
	var (
		rtltcpAddr = pflag.StringP("rtltcp", "r", "localhost:1234", "rtl_tcp server address.")
		dwell      = pflag.DurationP("dwell", "d", 3*time.Second, "Dwell time per channel before giving up on sync.")
		help       = pflag.BoolP("help", "h", false, "Display help text.")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - scan the FM band for HD Radio stations.\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	client, err := nrsc5.DialRTLTCP(*rtltcpAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	_ = client.SetSampleRate(nrsc5.SampleRateCU8)
	_ = client.SetTunerGainMode(false)

	for freq := fmBandStartHz; freq <= fmBandEndHz; freq += fmChannelStepHz {
		if scanChannel(client, freq, *dwell) {
			fmt.Printf("%.1f MHz: HD Radio sync acquired\n", float64(freq)/1e6)
		}
	}
}

// scanChannel tunes to freq and drives a short-lived Session off the live
// rtl_tcp stream, reporting whether EventSync fires before dwell elapses.
func scanChannel(client *nrsc5.RTLTCPClient, freqHz int, dwell time.Duration) bool {
	if err := client.SetCenterFreq(uint32(freqHz)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}

	synced := make(chan struct{}, 1)
	sess := nrsc5.NewSession(nrsc5.Config{
		Band: nrsc5.BandFM,
		Callback: func(e nrsc5.Event) {
			if e.Kind == nrsc5.EventSync {
				select {
				case synced <- struct{}{}:
				default:
				}
			}
		},
	})
	sess.Start()
	defer sess.Close()

	stop := make(chan struct{})
	defer close(stop)

	go func() {
		buf := make([]byte, 1<<16)
		for {
			n, err := client.Read(buf)
			if n > 0 {
				sess.PushCU8(buf[:n])
			}
			if err != nil {
				return
			}
			select {
			case <-stop:
				return
			default:
			}
		}
	}()

	select {
	case <-synced:
		return true
	case <-time.After(dwell):
		return false
	}
}
