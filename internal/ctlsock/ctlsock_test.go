package ctlsock

import (
	"bufio"
	"errors"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempRuntimeDir(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
}

type recordedDump struct {
	target Target
	path   string
}

func TestSocketPathPrefersXDGRuntimeDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	assert.Equal(t, filepath.Join(dir, "voshd.sock"), SocketPath())
}

func TestRequestDumpRoundTrip(t *testing.T) {
	withTempRuntimeDir(t)

	var mu sync.Mutex
	var calls []recordedDump

	srv, err := Listen(func(target Target, path string) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, recordedDump{target, path})
		return nil
	})
	require.NoError(t, err)
	defer srv.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve()
	}()

	require.NoError(t, RequestDump(TargetFocus, "/tmp/focus-1.dump"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 1)
	assert.Equal(t, TargetFocus, calls[0].target)
	assert.Equal(t, "/tmp/focus-1.dump", calls[0].path)
}

func TestRequestDumpSurfacesDumpFuncError(t *testing.T) {
	withTempRuntimeDir(t)

	srv, err := Listen(func(target Target, path string) error {
		return errors.New("boom")
	})
	require.NoError(t, err)
	defer srv.Close()
	go func() { _ = srv.Serve() }()

	err = RequestDump(TargetSystem, "/tmp/system.dump")
	assert.ErrorContains(t, err, "boom")
}

func TestRequestDumpWithNoServerListeningErrors(t *testing.T) {
	withTempRuntimeDir(t)
	err := RequestDump(TargetSystem, "/tmp/system.dump")
	assert.ErrorContains(t, err, "is voshd running")
}

func TestServerRejectsMalformedRequest(t *testing.T) {
	withTempRuntimeDir(t)

	srv, err := Listen(func(target Target, path string) error {
		t.Fatal("dump func must not be called for a malformed request")
		return nil
	})
	require.NoError(t, err)
	defer srv.Close()
	go func() { _ = srv.Serve() }()

	conn, err := net.Dial("unix", SocketPath())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("not a dump request\n"))
	require.NoError(t, err)

	reply, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "ERR: malformed request\n", reply)
}

func TestListenRemovesStaleSocketFile(t *testing.T) {
	withTempRuntimeDir(t)

	srv1, err := Listen(func(target Target, path string) error { return nil })
	require.NoError(t, err)
	require.NoError(t, srv1.ln.Close()) // simulate an unclean shutdown: listener gone, file left behind

	srv2, err := Listen(func(target Target, path string) error { return nil })
	require.NoError(t, err)
	defer srv2.Close()
}
