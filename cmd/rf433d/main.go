// Command rf433d records and replays 433 MHz OOK remote signals. Control
// commands arrive over MQTT; a small HTTP server exposes status and
// Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/rf433d/internal/command"
	"github.com/sweeney/rf433d/internal/config"
	"github.com/sweeney/rf433d/internal/gpio"
	"github.com/sweeney/rf433d/internal/metrics"
	"github.com/sweeney/rf433d/internal/radio"
	"github.com/sweeney/rf433d/internal/recorder"
	"github.com/sweeney/rf433d/internal/status"
	"github.com/sweeney/rf433d/internal/store"
	"github.com/sweeney/rf433d/internal/web"
)

// statusRefreshInterval drives live-status updates and the capture
// timeout check.
const statusRefreshInterval = 200 * time.Millisecond

func main() {
	def := config.Default()

	configPath := flag.String("config", "", "YAML config file (flags override it)")
	broker := flag.String("broker", def.Broker, "MQTT broker address")
	httpAddr := flag.String("http", def.HTTPAddr, "HTTP status address (empty to disable)")
	chip := flag.String("gpio-chip", def.GPIOChip, "GPIO character device")
	pinData := flag.Int("pin-data", def.PinData, "BCM pin wired to SX1276 DIO2")
	pinReset := flag.Int("pin-reset", def.PinReset, "BCM pin wired to SX1276 reset")
	spiDev := flag.String("spi", def.SPIDev, "SPI device of the SX1276")
	signalsDir := flag.String("signals-dir", def.SignalsDir, "Directory for saved signals")
	captureTimeout := flag.Duration("capture-timeout", time.Duration(def.CaptureTimeoutMs)*time.Millisecond, "Auto-stop recording after this long")
	repeats := flag.Int("repeats", def.Repeats, "Frame repeats per replay")
	frequency := flag.Float64("frequency", 0, "Carrier frequency in MHz (0 = 433.92)")
	txPower := flag.Int("tx-power", 0, "PA output in dBm (0 = chip default)")

	flag.Parse()

	cfg := def
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		cfg = loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	cfg = mergeFlags(cfg, flagValues{
		broker:         *broker,
		httpAddr:       *httpAddr,
		chip:           *chip,
		pinData:        *pinData,
		pinReset:       *pinReset,
		spiDev:         *spiDev,
		signalsDir:     *signalsDir,
		captureTimeout: *captureTimeout,
		repeats:        *repeats,
		frequency:      *frequency,
		txPower:        *txPower,
	}, set)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// flagValues carries parsed flag values into the merge so it can be
// tested without a real flag.FlagSet.
type flagValues struct {
	broker         string
	httpAddr       string
	chip           string
	pinData        int
	pinReset       int
	spiDev         string
	signalsDir     string
	captureTimeout time.Duration
	repeats        int
	frequency      float64
	txPower        int
}

// mergeFlags overlays explicitly-set flags onto the config. set holds the
// flag names the user passed on the command line.
func mergeFlags(cfg config.Config, fv flagValues, set map[string]bool) config.Config {
	if set["broker"] {
		cfg.Broker = fv.broker
	}
	if set["http"] {
		cfg.HTTPAddr = fv.httpAddr
	}
	if set["gpio-chip"] {
		cfg.GPIOChip = fv.chip
	}
	if set["pin-data"] {
		cfg.PinData = fv.pinData
	}
	if set["pin-reset"] {
		cfg.PinReset = fv.pinReset
	}
	if set["spi"] {
		cfg.SPIDev = fv.spiDev
	}
	if set["signals-dir"] {
		cfg.SignalsDir = fv.signalsDir
	}
	if set["capture-timeout"] {
		cfg.CaptureTimeoutMs = int(fv.captureTimeout.Milliseconds())
	}
	if set["repeats"] {
		cfg.Repeats = fv.repeats
	}
	if set["frequency"] {
		cfg.FrequencyMHz = fv.frequency
	}
	if set["tx-power"] {
		cfg.TxPowerDbm = fv.txPower
	}
	return cfg
}

func run(cfg config.Config) error {
	st, err := store.New(cfg.SignalsDir)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	line, err := gpio.NewRealLine(cfg.GPIOChip, cfg.PinData)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer line.Close()

	// A wrong version response means the board is miswired; refuse to run.
	rdo, err := radio.NewSX1276(cfg.SPIDev, cfg.GPIOChip, cfg.PinReset)
	if err != nil {
		return fmt.Errorf("init radio: %w", err)
	}
	defer rdo.Close()
	if cfg.FrequencyMHz != 0 {
		if err := rdo.SetFrequency(cfg.FrequencyMHz); err != nil {
			return fmt.Errorf("tune radio: %w", err)
		}
	}
	if cfg.TxPowerDbm != 0 {
		if err := rdo.SetTxPower(cfg.TxPowerDbm); err != nil {
			return fmt.Errorf("set tx power: %w", err)
		}
	}

	recCfg := recorder.DefaultConfig()
	recCfg.CaptureTimeout = time.Duration(cfg.CaptureTimeoutMs) * time.Millisecond
	recCfg.Repeats = cfg.Repeats
	rec := recorder.New(recCfg, rdo, line, st)

	tracker := status.NewTracker(time.Now(), status.Config{
		Broker:           cfg.Broker,
		HTTPAddr:         cfg.HTTPAddr,
		GPIOChip:         cfg.GPIOChip,
		PinData:          cfg.PinData,
		SignalsDir:       cfg.SignalsDir,
		CaptureTimeoutMs: int64(cfg.CaptureTimeoutMs),
		Repeats:          cfg.Repeats,
	})
	tracker.SetSlots(rec.Slots())

	ch, err := command.NewMQTTChannel(cfg.Broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer ch.Close()
	tracker.SetMQTTConnected(ch.IsConnected())

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: broker=%s pin-data=%d timeout=%dms repeats=%d",
		cfg.Broker, cfg.PinData, cfg.CaptureTimeoutMs, cfg.Repeats)

	ticker := time.NewTicker(statusRefreshInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(rec, ch, tracker, ticker.C, sigCh, time.Now)
}

// runLoop is the daemon's single control goroutine. Every state change
// of the recorder happens here, so its methods never race.
func runLoop(rec *recorder.Recorder, ch command.Channel, tracker *status.Tracker, tick <-chan time.Time, sig <-chan os.Signal, now func() time.Time) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if rec.State() == recorder.StateRecording {
				if _, _, err := rec.StopRecording(); err != nil && !errors.Is(err, recorder.ErrNoSignal) {
					log.Printf("stop recording on shutdown: %v", err)
				}
			}
			return nil

		case payload := <-ch.Requests():
			dispatch(rec, ch, tracker, command.Parse(payload))
			refresh(rec, ch, tracker, now())

		case t := <-tick:
			checkTimeout(rec, ch, tracker, t)
			refresh(rec, ch, tracker, t)
		}
	}
}

// checkTimeout auto-stops a recording whose capture window expired,
// reporting the result as if a stop command had arrived.
func checkTimeout(rec *recorder.Recorder, ch command.Channel, tracker *status.Tracker, now time.Time) {
	if !rec.CaptureTimedOut(now) {
		return
	}
	log.Printf("capture timeout after %v, stopping", rec.Elapsed(now).Truncate(time.Millisecond))
	dispatch(rec, ch, tracker, command.Request{Action: "stop"})
}

// refresh pushes the recorder's current state into the status tracker.
func refresh(rec *recorder.Recorder, ch command.Channel, tracker *status.Tracker, now time.Time) {
	state := string(rec.State())
	tracker.SetState(state)
	metrics.SetState(state)
	tracker.SetLive(rec.LivePulseCount(), rec.Elapsed(now))
	tracker.SetMQTTConnected(ch.IsConnected())
}

// dispatch executes one request against the recorder and publishes the
// response. Replay blocks until transmission completes; the ok response
// goes out first so clients see it before the radio goes busy.
func dispatch(rec *recorder.Recorder, ch command.Channel, tracker *status.Tracker, req command.Request) {
	send := func(resp command.Response) {
		if err := ch.Publish(resp.Encode(req.Legacy)); err != nil {
			log.Printf("publish response: %v", err)
		}
	}

	switch req.Action {
	case "record":
		if err := rec.StartRecording(); err != nil {
			if errors.Is(err, recorder.ErrBusy) {
				send(command.Err("record", "Busy"))
			} else {
				send(command.Err("record", err.Error()))
			}
			return
		}
		send(command.OK("record"))

	case "stop":
		count, proto, err := rec.StopRecording()
		switch {
		case errors.Is(err, recorder.ErrNotRecording):
			send(command.Err("stop", "Not recording"))
		case errors.Is(err, recorder.ErrNoSignal):
			send(command.Err("stop", "No signal detected"))
		case err != nil:
			send(command.Err("stop", err.Error()))
		default:
			tracker.SetCapture(count, string(proto))
			resp := command.OK("stop")
			resp.PulseCount = count
			resp.Protocol = string(proto)
			send(resp)
		}

	case "play":
		slot, ok := requireSlot(req, "Usage: PLAY <slot>", send)
		if !ok {
			return
		}
		if rec.State() == recorder.StateRecording || rec.State() == recorder.StateReplaying {
			send(command.Err("play", "Busy"))
			return
		}
		name, found := slotName(rec, slot)
		if !found {
			if req.Legacy {
				send(command.Err("play", fmt.Sprintf("Slot %d empty", slot)))
			} else {
				send(command.Err("play", "Slot empty"))
			}
			return
		}

		resp := command.OK("play")
		resp.Slot = slot
		resp.Name = name
		send(resp)

		tracker.SetState(string(recorder.StateReplaying))
		metrics.SetState(string(recorder.StateReplaying))
		if _, err := rec.Play(slot, tracker.ReplayObserver(slot)); err != nil {
			log.Printf("replay slot %d: %v", slot, err)
		}
		tracker.SetReplay(nil)
		if req.Legacy {
			done := command.OK("play")
			done.Message = "Playback complete"
			send(done)
		}

	case "save":
		slot, ok := requireSlot(req, "Usage: SAVE <slot> [name]", send)
		if !ok {
			return
		}
		name := req.Name
		if name == "" {
			name = "signal"
		}
		err := rec.Save(slot, name)
		switch {
		case errors.Is(err, recorder.ErrBusy):
			send(command.Err("save", "Busy"))
		case errors.Is(err, recorder.ErrNoSignal):
			send(command.Err("save", "No signal to save"))
		case errors.Is(err, store.ErrInvalidSlot):
			send(command.Err("save", "Save failed (slot 1-5)"))
		case err != nil:
			if req.Legacy {
				send(command.Err("save", fmt.Sprintf("Save error: %v", err)))
			} else {
				send(command.Err("save", err.Error()))
			}
		default:
			tracker.SetSlots(rec.Slots())
			resp := command.OK("save")
			resp.Slot = slot
			resp.Name = name
			send(resp)
		}

	case "delete":
		slot, ok := requireSlot(req, "Usage: DELETE <slot>", send)
		if !ok {
			return
		}
		err := rec.Delete(slot)
		switch {
		case errors.Is(err, recorder.ErrBusy):
			send(command.Err("delete", "Busy"))
		case errors.Is(err, recorder.ErrSlotNotFound):
			if req.Legacy {
				send(command.Err("delete", fmt.Sprintf("Slot %d not found", slot)))
			} else {
				send(command.Err("delete", "Slot not found"))
			}
		case err != nil:
			send(command.Err("delete", err.Error()))
		default:
			tracker.SetSlots(rec.Slots())
			resp := command.OK("delete")
			resp.Slot = slot
			send(resp)
		}

	case "get_slots":
		slots := rec.Slots()
		if slots == nil {
			slots = []store.Summary{}
		}
		resp := command.OK("get_slots")
		resp.Slots = &slots
		send(resp)

	case "status":
		connected := ch.IsConnected()
		count := len(rec.Slots())
		resp := command.OK("status")
		resp.State = string(rec.State())
		resp.MQTT = &connected
		resp.Signals = &count
		send(resp)

	default:
		if req.Legacy {
			send(command.Err(req.Action, "Unknown command: "+req.Action))
		} else {
			send(command.Err(req.Action, "Unknown action"))
		}
	}
}

// requireSlot validates the slot argument, sending the appropriate error
// response when it is missing or malformed.
func requireSlot(req command.Request, usage string, send func(command.Response)) (int, bool) {
	if req.BadSlot {
		send(command.Err(req.Action, "Invalid slot"))
		return 0, false
	}
	if !req.HasSlot {
		if req.Legacy {
			send(command.Err(req.Action, usage))
		} else {
			send(command.Err(req.Action, "Missing slot"))
		}
		return 0, false
	}
	return req.Slot, true
}

// slotName looks up the saved name for a slot.
func slotName(rec *recorder.Recorder, slot int) (string, bool) {
	for _, s := range rec.Slots() {
		if s.Slot == slot {
			return s.Name, true
		}
	}
	return "", false
}
