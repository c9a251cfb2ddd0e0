// Command voshd is the screen-reader engine's daemon entrypoint. It wires
// together the Element Gateway, Speech Scheduler, Input Subsystem, and
// Navigator into an Agent and runs it in the foreground, following
// NoiseTorch's cli.go pattern of a flags struct populated once and threaded
// into a shared context, adapted to github.com/jessevdk/go-flags'
// AddCommand-based subcommands the way canonical-snapd's cmd/snap tree
// structures its own CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"github.com/vosh-go/voshd/internal/agent"
	"github.com/vosh-go/voshd/internal/applog"
	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/config"
	"github.com/vosh-go/voshd/internal/ctlsock"
	"github.com/vosh-go/voshd/internal/input"
	"github.com/vosh-go/voshd/internal/speech"
)

// options holds the flags shared by every subcommand, populated once by
// go-flags before Execute dispatches to the chosen command.
type options struct {
	Log     string  `long:"log" description:"log level: debug, info, warn, error" default:"info"`
	Config  string  `long:"config" description:"path to an explicit config.toml, overriding the XDG default"`
	DumpDir string  `long:"dump-dir" description:"directory dump shortcuts/commands write into" default:"."`
	Timeout float64 `long:"timeout" description:"per-call accessibility gateway timeout, in seconds" default:"5"`
}

var opts options

type runCommand struct{}
type checkPermissionsCommand struct{}
type dumpCommand struct {
	Args struct {
		Target string `positional-arg-name:"target" description:"system-wide|app|focus"`
		Path   string `positional-arg-name:"path" description:"file to write the dump to"`
	} `positional-args:"yes" required:"yes"`
}

func (c *runCommand) Execute(args []string) error {
	return runDaemon()
}

func (c *checkPermissionsCommand) Execute(args []string) error {
	log := applog.Init(os.Stderr, applog.LevelFromFlag(opts.Log))
	gw := newGateway()
	if gw.ConfirmTrusted() {
		log.Info("accessibility permission granted")
		return nil
	}
	log.Error("accessibility permission not granted; enable voshd in System Settings > Privacy & Security > Accessibility")
	os.Exit(1)
	return nil
}

func (c *dumpCommand) Execute(args []string) error {
	var target ctlsock.Target
	switch c.Args.Target {
	case "system-wide", "system":
		target = ctlsock.TargetSystem
	case "app", "application":
		target = ctlsock.TargetApplication
	case "focus":
		target = ctlsock.TargetFocus
	default:
		return fmt.Errorf("unknown dump target %q (want system-wide|app|focus)", c.Args.Target)
	}
	return ctlsock.RequestDump(target, c.Args.Path)
}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("run", "Run the engine in the foreground",
		"Starts the accessibility gateway, speech scheduler, and input subsystem, and blocks until signaled or trust is denied.",
		&runCommand{})
	parser.AddCommand("check-permissions", "Check accessibility trust",
		"Runs the trust check (prompting the user if needed) and reports the result without starting the engine.",
		&checkPermissionsCommand{})
	parser.AddCommand("dump", "Request a dump from a running voshd",
		"Asks an already-running 'voshd run' process, over its control socket, to write one of the three dump targets to a file.",
		&dumpCommand{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

// runDaemon wires the full engine together and blocks until SIGINT/SIGTERM
// or the accessibility trust check fails.
func runDaemon() error {
	log := applog.Init(os.Stderr, applog.LevelFromFlag(opts.Log))

	var cfg config.Config
	if opts.Config != "" {
		loaded, err := config.LoadFrom(opts.Config)
		if err != nil {
			log.Error("failed to load explicit config", "path", opts.Config, "error", err)
			return err
		}
		cfg = loaded
	} else {
		if err := config.EnsureInitialized(log); err != nil {
			log.Warn("could not initialize default config", "error", err)
		}
		cfg = config.Load(log)
	}
	if opts.Timeout > 0 {
		cfg.GatewayTimeoutSeconds = opts.Timeout
	}

	gw := newGateway()
	if !gw.ConfirmTrusted() {
		log.Error("accessibility permission not granted; run 'voshd check-permissions' for details")
		return fmt.Errorf("accessibility permission denied")
	}

	tap := newTap(log)
	var onSpeechDone func()
	device := newDevice(cfg, log, func() {
		if onSpeechDone != nil {
			onSpeechDone()
		}
	})
	frontmost := newFrontmost()

	a := agent.New(gw, device, tap, frontmost, cfg, log)
	onSpeechDone = a.DidFinishUtterance
	wireTapCallbacks(a, tap)

	if err := a.BindDumpDir(opts.DumpDir); err != nil {
		log.Warn("dump shortcut bind failed", "error", err)
	}

	srv, err := ctlsock.Listen(a.DumpTo)
	if err != nil {
		log.Warn("control socket unavailable, 'voshd dump' will not work against this instance", "error", err)
	} else {
		defer srv.Close()
		go func() {
			if err := srv.Serve(); err != nil {
				log.Debug("control socket stopped", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("signal received, shutting down")
		a.Stop()
		cancel()
	}()

	log.Info("voshd started")
	return a.Run(ctx)
}

// wireTapCallbacks connects a concrete Tap's event-delivery callbacks to
// the Agent, a step that cannot happen inside agent.New since the Input
// Subsystem consuming those callbacks is constructed there. Only the
// darwin CGEventTap and the mock tap deliver events via callback fields;
// both are handled by platform-specific files.
func wireTapCallbacks(a *agent.Agent, tap input.Tap) {
	wirePlatformTapCallbacks(a, tap)
}

func newGateway() ax.Gateway {
	if g := platformGateway(); g != nil {
		return g
	}
	return ax.NewMockGateway()
}

func newTap(log *slog.Logger) input.Tap {
	if t := platformTap(log); t != nil {
		return t
	}
	return input.NewMockTap()
}

func newDevice(cfg config.Config, log *slog.Logger, onDone func()) speech.Device {
	if d := platformDevice(cfg, log, onDone); d != nil {
		return d
	}
	return speech.NewMockDevice()
}

func newFrontmost() agent.FrontmostApplication {
	if f := platformFrontmost(); f != nil {
		return f
	}
	return agent.NewMockFrontmost(8)
}
