package oxia

import (
	"os"
	"testing"

	"github.com/oxia-db/oxia/oxiad/dataserver"
)

// TestServer is an Oxia server used by tests: either an embedded standalone
// instance or an external one named by OXIA_SERVICE_ADDRESS.
type TestServer struct {
	standalone *dataserver.Standalone
	addr       string
}

// Addr returns the service address of the test server.
func (s *TestServer) Addr() string {
	return s.addr
}

// StartTestServer returns a running Oxia server for the duration of t.
// The embedded server's data directory is t.TempDir and it is closed on cleanup.
func StartTestServer(t *testing.T) *TestServer {
	t.Helper()

	if addr := os.Getenv("OXIA_SERVICE_ADDRESS"); addr != "" {
		t.Logf("using external oxia server at %s", addr)
		return &TestServer{addr: addr}
	}

	standalone, err := dataserver.NewStandalone(dataserver.NewTestConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("failed to start oxia standalone server: %v", err)
	}
	t.Cleanup(func() {
		_ = standalone.Close()
	})

	return &TestServer{standalone: standalone, addr: standalone.ServiceAddr()}
}
