package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/blewig/blewig/internal/ble"
	"github.com/blewig/blewig/internal/bluez"
	"github.com/blewig/blewig/internal/button"
	"github.com/blewig/blewig/internal/config"
	"github.com/blewig/blewig/internal/gadget"
	"github.com/blewig/blewig/internal/hid"
	"github.com/blewig/blewig/internal/hostos"
	"github.com/blewig/blewig/internal/indicator"
	"github.com/blewig/blewig/internal/link"
	"github.com/blewig/blewig/internal/wiggler"
)

// pollInterval paces the cooperative main loop. Both periodic consumers
// (wiggler fires, host-OS grace deadlines) tolerate millisecond jitter.
const pollInterval = 20 * time.Millisecond

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/blewig/config.yaml)")
	backend := flag.String("backend", "", "override output backend (gadget or desktop)")
	writeConfig := flag.Bool("write-config", false, "write a default config file and exit")
	flag.Parse()

	if *writeConfig {
		path, err := config.WriteDefault()
		if err != nil {
			log.Fatalf("write config: %v", err)
		}
		if path == "" {
			log.Println("Config file already exists, not overwritten")
		} else {
			log.Printf("Default config written to %s", path)
		}
		return
	}

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *backend != "" {
		cfg.Output.Backend = *backend
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	printBanner(cfg)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	// Bluetooth adapter health check. Advertising silently fails when
	// the adapter is down, so fail loudly before bringing up the service.
	checkAdapter()

	// HID output backend
	out, closeOutput, err := openOutput(cfg)
	if err != nil {
		log.Fatalf("Failed to open HID output: %v\n\nFor the gadget backend, check that the USB gadget is configured and the hidg devices exist.", err)
	}
	player := hid.NewPlayer(out)
	slog.Info("[MAIN] HID output ready", "backend", cfg.Output.Backend)

	// Status indicator
	var sink indicator.Sink
	if cfg.LED.SysfsDir != "" {
		sink = indicator.NewLEDSink(cfg.LED.SysfsDir)
	} else {
		sink = &indicator.LogSink{}
	}
	ind := indicator.NewController(sink)

	// GATT service and collaborators. The server doubles as the
	// advertiser, the wiggler mirror, and the host-OS notifier.
	srv := ble.NewServer(ble.NewBluetoothTransport(), cfg.DeviceName)
	mon := link.NewMonitor(srv, ind)
	wig := wiggler.New(out, srv, ind, time.Duration(cfg.Wiggler.IntervalMs)*time.Millisecond)
	det := hostos.New(srv)

	srv.Attach(player, wig, det, func(connected bool) {
		if connected {
			mon.HandleConnect()
		} else {
			mon.HandleDisconnect()
		}
	})
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start GATT service: %v", err)
	}

	// Passive host-OS probing via the gadget's control endpoint.
	var watcher *gadget.Watcher
	if cfg.Output.Backend == "gadget" && cfg.USB.Ep0Path != "" {
		watcher, err = gadget.NewWatcher(cfg.USB.Ep0Path, det)
		if err != nil {
			slog.Warn("[MAIN] ep0 unavailable, host-OS probing disabled", "error", err)
		} else {
			go func() {
				if err := watcher.Run(); err != nil {
					slog.Error("[MAIN] ep0 watcher stopped", "error", err)
				}
			}()
		}
	}

	// Physical toggle. Desktop only: the key hook needs a display server.
	var listener *button.Listener
	var buttonEvents <-chan struct{} // nil when no listener; blocks in select
	if cfg.Output.Backend == "desktop" && len(cfg.Button.Keys) > 0 {
		listener = button.NewListener(cfg.Button.Keys)
		buttonEvents = listener.Events()
		go listener.Start()
		slog.Info("[MAIN] toggle combo ready", "keys", strings.Join(cfg.Button.Keys, "+"))
	}

	// Signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	slog.Info("[MAIN] ready", "device", cfg.DeviceName)

	// Main event loop
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			wig.Tick()
			det.Tick()

		case _, ok := <-buttonEvents:
			if !ok {
				slog.Info("[MAIN] button listener stopped")
				buttonEvents = nil
				continue
			}
			wig.Toggle()

		case sig := <-sigCh:
			slog.Info("[MAIN] shutting down", "signal", sig.String())
			if watcher != nil {
				watcher.Close()
			}
			if listener != nil {
				listener.Stop()
			}
			if closeOutput != nil {
				if err := closeOutput(); err != nil {
					slog.Warn("[MAIN] closing HID output", "error", err)
				}
			}
			// Exit directly to avoid gohook's C cleanup crash.
			// The OS reclaims the event hook on process exit.
			os.Exit(0)
		}
	}
}

// checkAdapter powers the Bluetooth adapter through BlueZ. Failures are
// non-fatal: on hosts without a system bus (desktop development on
// macOS) the stack manages the adapter itself.
func checkAdapter() {
	doc, err := bluez.NewDoctor()
	if err != nil {
		slog.Warn("[MAIN] skipping adapter check", "error", err)
		return
	}
	defer doc.Close()
	adapter, err := doc.EnsurePowered()
	if err != nil {
		slog.Warn("[MAIN] adapter check failed", "error", err)
		return
	}
	slog.Info("[MAIN] adapter powered", "adapter", adapter)
}

// openOutput builds the configured HID output backend. The returned
// close function may be nil.
func openOutput(cfg *config.Config) (hid.Output, func() error, error) {
	switch cfg.Output.Backend {
	case "gadget":
		return gadget.Open(cfg.Output.KeyboardDev, cfg.Output.MouseDev, cfg.Output.ConsumerDev)
	case "desktop":
		return hid.NewDesktop(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown output backend %q", cfg.Output.Backend)
	}
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Printf("Config loaded from %s", defaultPath)
		return cfg, nil
	}

	// No config file, use defaults
	log.Println("No config file found, using defaults")
	return config.Default(), nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== blewig ===")
	fmt.Printf("  Device:   %s\n", cfg.DeviceName)
	fmt.Printf("  Backend:  %s\n", cfg.Output.Backend)
	fmt.Printf("  Wiggler:  every %dms\n", cfg.Wiggler.IntervalMs)
	if cfg.Output.Backend == "desktop" && len(cfg.Button.Keys) > 0 {
		fmt.Printf("  Toggle:   %s\n", strings.Join(cfg.Button.Keys, "+"))
	}
	if cfg.LED.SysfsDir != "" {
		fmt.Printf("  LED:      %s\n", cfg.LED.SysfsDir)
	}
	fmt.Printf("  Log:      %s\n", cfg.LogLevel)
	fmt.Println("==============")
}
