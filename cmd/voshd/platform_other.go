//go:build !darwin

package main

import (
	"log/slog"

	"github.com/vosh-go/voshd/internal/agent"
	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/config"
	"github.com/vosh-go/voshd/internal/input"
	"github.com/vosh-go/voshd/internal/speech"
)

// On non-darwin platforms there is no real accessibility/TTS/input binding
// to build against, so every platform* hook returns nil and the caller
// falls back to the in-memory mocks. This lets the daemon still build and
// run (against nothing) on a developer's non-macOS machine for
// config/CLI-surface iteration.

func platformGateway() ax.Gateway { return nil }

func platformTap(log *slog.Logger) input.Tap { return nil }

func platformDevice(cfg config.Config, log *slog.Logger, onDone func()) speech.Device { return nil }

func platformFrontmost() agent.FrontmostApplication { return nil }

func wirePlatformTapCallbacks(a *agent.Agent, tap input.Tap) {}
