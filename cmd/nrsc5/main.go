// Command nrsc5 tunes an rtl_tcp-connected RTL-SDR dongle (or replays a
// raw cu8/cs16 capture file) and decodes HD Radio audio and station
// metadata, printing events to stdout.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/hdreceiver/nrsc5go/src"
)

func main() {
	var (
		rtltcpAddr = pflag.StringP("rtltcp", "r", "", "rtl_tcp server address (host:port); mutually exclusive with --input.")
		inputFile  = pflag.StringP("input", "i", "", "Raw cu8 or cs16 capture file to decode instead of a live rtl_tcp connection.")
		inputMode  = pflag.StringP("input-mode", "m", "cu8", "Capture sample format: cu8 or cs16.")
		freqHz     = pflag.Float64P("frequency", "f", 0, "Center frequency in Hz.")
		band       = pflag.StringP("band", "b", "FM", "Waveform band: FM or AM.")
		program    = pflag.IntP("program", "p", 0, "Audio program number to decode.")
		gainDB     = pflag.Float64P("gain", "g", 0, "Manual tuner gain in dB; 0 selects automatic gain.")
		ppmError   = pflag.IntP("ppm-error", "P", 0, "Tuner crystal frequency correction, in PPM.")
		biasTee    = pflag.BoolP("bias-tee", "T", false, "Enable the dongle's bias-tee power output.")
		wavOut     = pflag.StringP("wav-output", "o", "", "Optional path to capture decoded audio as a WAV file.")
		listenAddr = pflag.StringP("listen", "l", "", "Optional address to also serve the event stream over TCP (e.g. :9999).")
		help       = pflag.BoolP("help", "h", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - an HD Radio (NRSC-5) software receiver.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nUsage: %s [options]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	bandVal, err := nrsc5.ParseBand(*band)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *rtltcpAddr == "" && *inputFile == "" {
		fmt.Fprintln(os.Stderr, "one of --rtltcp or --input is required")
		pflag.Usage()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	sess := nrsc5.NewSession(nrsc5.Config{
		Band:           bandVal,
		Program:        *program,
		PPMError:       *ppmError,
		BiasTee:        *biasTee,
		DirectSampling: 0,
		Callback: func(e nrsc5.Event) {
			_ = enc.Encode(e)
		},
	})

	var wavWriter *nrsc5.WAVWriter
	if *wavOut != "" {
		wavWriter, err = nrsc5.NewWAVWriter(*wavOut)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer wavWriter.Close()

		prev := sess.Config().Callback
		sess.SetCallback(func(e nrsc5.Event) {
			if prev != nil {
				prev(e)
			}
			if e.Kind == nrsc5.EventAudio {
				_ = wavWriter.Write(e.Audio)
			}
		})
	}

	if *listenAddr != "" {
		srv, err := nrsc5.NewEventServer(sess, *listenAddr, "")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer srv.Close()
	}

	sess.Start()
	defer sess.Close()

	if *inputFile != "" {
		runFile(sess, *inputFile, *inputMode)
		return
	}
	runRTLTCP(sess, *rtltcpAddr, *freqHz, *gainDB, *ppmError, *biasTee)
}

func runFile(sess *nrsc5.Session, path, mode string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	buf := make([]byte, 1<<16)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if mode == "cs16" {
				samples := make([]int16, n/2)
				for i := range samples {
					samples[i] = int16(buf[2*i]) | int16(buf[2*i+1])<<8
				}
				sess.PushCS16(samples)
			} else {
				sess.PushCU8(buf[:n])
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
	}
}

func runRTLTCP(sess *nrsc5.Session, addr string, freqHz, gainDB float64, ppmError int, biasTee bool) {
	client, err := nrsc5.DialRTLTCP(addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	_ = client.SetCenterFreq(uint32(freqHz))
	_ = client.SetSampleRate(nrsc5.SampleRateCU8)
	_ = client.SetFreqCorrection(int32(ppmError))
	_ = client.SetBiasTee(biasTee)
	if gainDB != 0 {
		_ = client.SetTunerGainMode(true)
		_ = client.SetTunerGain(int32(gainDB * 10))
	} else {
		_ = client.SetTunerGainMode(false)
	}

	buf := make([]byte, 1<<16)
	for {
		n, err := client.Read(buf)
		if n > 0 {
			sess.PushCU8(buf[:n])
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
	}
}
