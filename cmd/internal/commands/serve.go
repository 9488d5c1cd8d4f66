package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"remotekey/internal/api"
	"remotekey/internal/config"
	"remotekey/internal/input"
	"remotekey/internal/logger"
	"remotekey/internal/network"
	"remotekey/internal/osutils"
	"remotekey/internal/session"
	"remotekey/internal/simulator"
	"remotekey/internal/state"
	"remotekey/internal/telemetry"
	"remotekey/internal/tray"
)

type ServeCmd struct {
	// Listener
	Port       int    `help:"WebSocket listen port (overrides config)" env:"REMOTEKEY_PORT"`
	Credential string `help:"shared secret clients send in AUTH (overrides config)" env:"REMOTEKEY_CREDENTIAL"`

	// Input
	Keymap string `help:"YAML file overriding key names" type:"path" env:"REMOTEKEY_KEYMAP"`
	DryRun bool   `help:"log input instead of injecting it" env:"REMOTEKEY_DRY_RUN"`

	// Operator surfaces
	NoTray   bool   `help:"run without the system tray icon" env:"REMOTEKEY_NO_TRAY"`
	NoAPI    bool   `help:"disable the loopback operator API" env:"REMOTEKEY_NO_API"`
	APIPort  int    `help:"operator API port (overrides config)" env:"REMOTEKEY_API_PORT"`
	APIToken string `help:"bearer token required by the operator API" env:"REMOTEKEY_API_TOKEN"`
	Firewall bool   `help:"open the listen port in the Windows firewall" env:"REMOTEKEY_FIREWALL"`

	Telemetry  bool `help:"export metrics over OTLP gRPC" env:"REMOTEKEY_TELEMETRY"`
	SaveConfig bool `help:"write the effective configuration back to the config file"`
}

// apply overlays the flags that were set on cfg.
func (s *ServeCmd) apply(cfg *config.Config) {
	if s.Port != 0 {
		cfg.Server.Port = s.Port
	}
	if s.Credential != "" {
		cfg.Server.Credential = s.Credential
	}
	if s.Keymap != "" {
		cfg.Input.KeymapFile = s.Keymap
	}
	if s.DryRun {
		cfg.Input.DryRun = true
	}
	if s.NoTray {
		cfg.Operator.Tray = false
	}
	if s.NoAPI {
		cfg.Operator.APIEnabled = false
	}
	if s.APIPort != 0 {
		cfg.Operator.APIPort = s.APIPort
	}
	if s.APIToken != "" {
		cfg.Operator.APIToken = s.APIToken
	}
	if s.Firewall {
		cfg.Operator.FirewallRule = true
	}
	if s.Telemetry {
		cfg.Telemetry.Enabled = true
	}
}

func (s *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	zlog.Logger = log

	cfgMgr, err := config.NewManager(globals.Config, log)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	if err := cfgMgr.Load(); err != nil {
		return err
	}
	cfgMgr.Update(s.apply)

	cfg := cfgMgr.Get()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if s.SaveConfig {
		if err := cfgMgr.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}

	log.Info().
		Str("version", globals.Version).
		Str("config", cfgMgr.Path()).
		Int("port", cfg.Server.Port).
		Bool("dry_run", cfg.Input.DryRun).
		Msg("Remote key server starting")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.Telemetry.ServiceName, globals.Version)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("Telemetry shutdown failed")
			}
		}()
	}
	metrics := telemetry.GetMetrics()

	mapper, err := newMapper(cfg.Input.KeymapFile)
	if err != nil {
		return err
	}

	sim := simulator.New(mapper, input.WithLogging(newInjector(cfg.Input.DryRun, log), log),
		simulator.WithLogger(log),
		simulator.WithFailureHook(func(op string, _ error) {
			metrics.CountInjectionError(context.Background(), op)
		}),
	)
	tracker := state.NewTracker(sim, log)

	ip := network.GetLocalIP()
	if ips, err := network.GetLocalIPs(); err == nil {
		log.Debug().Strs("addresses", ips).Msg("Local interface addresses")
	}

	mgr := session.NewManager(sim, tracker, session.Options{
		Credential:         cfg.Server.Credential,
		AuthTimeout:        cfg.Server.AuthTimeout(),
		PingInterval:       cfg.Server.PingInterval(),
		ReadLimit:          cfg.Server.ReadLimit,
		IP:                 ip,
		Port:               cfg.Server.Port,
		Logger:             log,
		Metrics:            metrics,
		OnCredentialChange: cfgMgr.SetCredential,
	})

	ln, err := net.Listen("tcp4", fmt.Sprintf("0.0.0.0:%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cfg.Server.Port, err)
	}

	var apiLn net.Listener
	if cfg.Operator.APIEnabled {
		apiLn, err = net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", cfg.Operator.APIPort))
		if err != nil {
			ln.Close()
			return fmt.Errorf("failed to listen on api port %d: %w", cfg.Operator.APIPort, err)
		}
	}

	log.Info().Str("url", fmt.Sprintf("ws://%s:%d", ip, cfg.Server.Port)).Msg("Waiting for client")

	if cfg.Operator.FirewallRule {
		go func() {
			if err := osutils.EnsureFirewallRule(cfg.Server.Port, log); err != nil {
				log.Warn().Err(err).Msg("Firewall rule not applied")
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mgr.Serve(gctx, ln)
	})
	if apiLn != nil {
		apiServer := api.NewServer(mgr, cfg.Operator.APIToken, log)
		g.Go(func() error {
			return apiServer.Serve(gctx, apiLn)
		})
	}

	if cfg.Operator.Tray {
		runTray(gctx, cancel, mgr)
		cancel()
	}

	err = g.Wait()
	log.Info().Msg("Remote key server stopped")
	return err
}

// runTray blocks in the tray event loop until Quit is chosen or ctx ends.
func runTray(ctx context.Context, cancel context.CancelFunc, mgr *session.Manager) {
	t := tray.New("Remote Key", func() string {
		info := mgr.Info()
		return tray.FormatStatus(info.IP, info.Port, info.Connected, info.RemoteAddr)
	}, time.Second)

	t.AddMenuItem("Disconnect client", func() {
		mgr.Disconnect()
	})
	t.AddSeparator()
	t.AddMenuItem("Quit", cancel)

	go func() {
		<-t.Ready()
		<-ctx.Done()
		t.Stop()
	}()

	t.Run()
}

const dryRunHistory = 256

type trustChecker interface {
	Trusted() bool
}

func newInjector(dryRun bool, log zerolog.Logger) input.Injector {
	if dryRun {
		log.Warn().Msg("Dry run: input is logged, not injected")
		rec := input.NewRecorder()
		rec.SetLimit(dryRunHistory)
		return rec
	}

	inj := input.NewInjector()
	if tc, ok := any(inj).(trustChecker); ok && !tc.Trusted() {
		log.Warn().Msg("Accessibility permission not granted; injected input will be ignored")
	}
	return inj
}
