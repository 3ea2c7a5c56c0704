// Package miniotest runs a local MinIO server for object store tests.
//
// The server binary is looked up at MINIO_BINARY, falling back to /tmp/minio.
// Tests skip when it is missing.
package miniotest

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"time"
)

// Credentials of the test server.
const (
	AccessKey = "minioadmin"
	SecretKey = "minioadmin"
	Region    = "us-east-1"
)

// Server is a running MinIO process.
type Server struct {
	proc *os.Process
	dir  string
	addr string
}

// Addr returns host:port of the server.
func (s *Server) Addr() string {
	return s.addr
}

// Endpoint returns the server URL.
func (s *Server) Endpoint() string {
	return "http://" + s.addr
}

func binaryPath() string {
	if p := os.Getenv("MINIO_BINARY"); p != "" {
		return p
	}
	return "/tmp/minio"
}

// Start launches MinIO on the given port and waits until it answers its
// liveness probe.
func Start(port string) (*Server, error) {
	bin := binaryPath()
	if _, err := os.Stat(bin); err != nil {
		return nil, fmt.Errorf("minio binary not found at %s", bin)
	}

	dir, err := os.MkdirTemp("", "minio-data-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	addr := net.JoinHostPort("localhost", port)
	cmd := exec.Command(bin, "server", dir, "--address", addr, "--quiet")
	cmd.Env = append(os.Environ(),
		"MINIO_ROOT_USER="+AccessKey,
		"MINIO_ROOT_PASSWORD="+SecretKey,
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to start minio: %w", err)
	}

	s := &Server{proc: cmd.Process, dir: dir, addr: addr}

	client := &http.Client{Timeout: time.Second}
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		resp, err := client.Get(s.Endpoint() + "/minio/health/live")
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return s, nil
		}
	}

	s.Close()
	return nil, fmt.Errorf("minio did not become ready on %s", addr)
}

// Close stops the server and removes its data.
func (s *Server) Close() {
	if s.proc != nil {
		_ = s.proc.Kill()
		_, _ = s.proc.Wait()
	}
	if s.dir != "" {
		os.RemoveAll(s.dir)
	}
}
