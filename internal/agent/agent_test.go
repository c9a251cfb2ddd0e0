package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/config"
	"github.com/vosh-go/voshd/internal/ctlsock"
	"github.com/vosh-go/voshd/internal/input"
	"github.com/vosh-go/voshd/internal/speech"
)

// buildFixtureApp wires a minimal application (one window with two sibling
// buttons) into gw and returns it. This is the same shape the end-to-end
// scenarios in the contract walk through: a simple label read, next-sibling
// movement, and a boundary.
func buildFixtureApp(gw *ax.MockGateway, pid int) (ok, cancel ax.Element) {
	app := gw.NewElement("application", ax.Attrs{ax.AttrTitle: ax.String("TextEdit")})
	gw.SetApplication(pid, app)
	window := gw.NewElement("window", ax.Attrs{ax.AttrTitle: ax.String("Untitled")})
	gw.AppendChild(app, window)
	ok = gw.NewElement("button", ax.Attrs{ax.AttrTitle: ax.String("OK")})
	cancel = gw.NewElement("button", ax.Attrs{ax.AttrTitle: ax.String("Cancel")})
	gw.AppendChild(window, ok)
	gw.AppendChild(window, cancel)
	gw.SetAttr(app, ax.AttrFocusedWindow, ax.ElementValue(window))
	return
}

func newTestAgent(t *testing.T) (*Agent, *ax.MockGateway, *speech.MockDevice, *input.MockTap) {
	t.Helper()
	gw := ax.NewMockGateway()
	dev := speech.NewMockDevice()
	tap := input.NewMockTap()
	frontmost := NewMockFrontmost(4)
	a := New(gw, dev, tap, frontmost, config.Default(), nil)
	return a, gw, dev, tap
}

func invoke(t *testing.T, a *Agent, key input.BindingKey) {
	t.Helper()
	action, ok := a.table.Lookup(key)
	require.True(t, ok, "expected a bound shortcut for %+v", key)
	action(context.Background())
}

func TestEndToEndSimpleLabelReadOnRetarget(t *testing.T) {
	a, gw, dev, _ := newTestAgent(t)
	buildFixtureApp(gw, 99)

	require.NoError(t, a.navigator.Retarget(context.Background(), 99))
	assert.Equal(t, []string{"TextEdit"}, dev.Spoken)

	a.DidFinishUtterance()
	a.DidFinishUtterance()
	assert.Equal(t, []string{"TextEdit", "Untitled", "OK"}, dev.Spoken)
}

func TestEndToEndNextSiblingMovesFocusAndReads(t *testing.T) {
	a, gw, dev, _ := newTestAgent(t)
	buildFixtureApp(gw, 99)
	require.NoError(t, a.navigator.Retarget(context.Background(), 99))

	invoke(t, a, input.BindingKey{BrowseMode: false, KeyCode: keyRight})
	assert.Equal(t, "Cancel", dev.Spoken[len(dev.Spoken)-1])
}

func TestEndToEndBoundaryAtLastSiblingRereadsSameEntity(t *testing.T) {
	a, gw, dev, _ := newTestAgent(t)
	buildFixtureApp(gw, 99)
	require.NoError(t, a.navigator.Retarget(context.Background(), 99))

	invoke(t, a, input.BindingKey{BrowseMode: false, KeyCode: keyRight}) // OK -> Cancel
	invoke(t, a, input.BindingKey{BrowseMode: false, KeyCode: keyRight}) // Cancel has no next sibling
	assert.Equal(t, "Cancel", dev.Spoken[len(dev.Spoken)-1], "boundary re-reads the same entity rather than moving")
}

func TestEndToEndTabReReadsCurrentFocusWithoutMoving(t *testing.T) {
	a, gw, dev, _ := newTestAgent(t)
	buildFixtureApp(gw, 99)
	require.NoError(t, a.navigator.Retarget(context.Background(), 99))

	invoke(t, a, input.BindingKey{BrowseMode: false, KeyCode: keyTab})
	assert.Equal(t, "OK", dev.Spoken[len(dev.Spoken)-1])
}

func TestEndToEndDoubleTapLockKeyTogglesAndAnnounces(t *testing.T) {
	a, _, dev, tap := newTestAgent(t)

	a.HandleHID(input.RawEvent{IsLockKey: true, Down: true, Timestamp: 100_000_000})
	assert.Empty(t, dev.Spoken, "a single tap announces nothing")

	a.HandleHID(input.RawEvent{IsLockKey: true, Down: true, Timestamp: 200_000_000})
	require.Len(t, dev.Spoken, 1)
	assert.Equal(t, "CapsLock On", dev.Spoken[0])
	assert.Equal(t, 1, tap.Synthesized)
}

func TestEndToEndSoloControlInterruptStopsSpeech(t *testing.T) {
	a, gw, dev, _ := newTestAgent(t)
	buildFixtureApp(gw, 99)
	require.NoError(t, a.navigator.Retarget(context.Background(), 99))
	stopsBefore := dev.Stops

	a.HandleHID(input.RawEvent{Mods: input.ModControl, KeyCode: 0, Down: true})
	a.HandleHID(input.RawEvent{Mods: input.ModControl, KeyCode: 0, Down: false})

	assert.Greater(t, dev.Stops, stopsBefore, "the interrupt chord must stop whatever is speaking")
}

func TestEndToEndDumpShortcutWritesFile(t *testing.T) {
	a, gw, _, _ := newTestAgent(t)
	buildFixtureApp(gw, 99)
	require.NoError(t, a.navigator.Retarget(context.Background(), 99))

	dir := t.TempDir()
	require.NoError(t, a.BindDumpDir(dir))

	invoke(t, a, input.BindingKey{BrowseMode: false, KeyCode: keyComma})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "focus-")
}

func TestDumpToAllThreeTargets(t *testing.T) {
	a, gw, _, _ := newTestAgent(t)
	buildFixtureApp(gw, 99)
	require.NoError(t, a.navigator.Retarget(context.Background(), 99))

	dir := t.TempDir()

	sysPath := filepath.Join(dir, "system.dump")
	require.NoError(t, a.DumpTo(ctlsock.TargetSystem, sysPath))
	_, err := os.Stat(sysPath)
	require.NoError(t, err)

	appPath := filepath.Join(dir, "app.dump")
	require.NoError(t, a.DumpTo(ctlsock.TargetApplication, appPath))
	_, err = os.Stat(appPath)
	require.NoError(t, err)

	focusPath := filepath.Join(dir, "focus.dump")
	require.NoError(t, a.DumpTo(ctlsock.TargetFocus, focusPath))
	_, err = os.Stat(focusPath)
	require.NoError(t, err)
}
