//go:build darwin

package main

import (
	"context"
	"log/slog"

	"github.com/vosh-go/voshd/internal/agent"
	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/config"
	"github.com/vosh-go/voshd/internal/input"
	"github.com/vosh-go/voshd/internal/speech"
)

func platformGateway() ax.Gateway {
	return ax.NewDarwinGateway()
}

func platformTap(log *slog.Logger) input.Tap {
	return input.NewDarwinTap(log)
}

func platformDevice(cfg config.Config, log *slog.Logger, onDone func()) speech.Device {
	return speech.NewDarwinDevice(cfg.VoiceIdentifier, cfg.VoiceRate, cfg.VoiceVolume, onDone)
}

func platformFrontmost() agent.FrontmostApplication {
	return agent.NewDarwinFrontmost()
}

func wirePlatformTapCallbacks(a *agent.Agent, tap input.Tap) {
	dt, ok := tap.(*input.DarwinTap)
	if !ok {
		return
	}
	dt.OnHID = a.HandleHID
	dt.OnWindowServer = func(ev input.RawEvent) {
		a.HandleWindowServer(context.Background(), ev)
	}
}
