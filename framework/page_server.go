package framework

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const httpListenerTimeout = time.Second * 10

// PageServer serves a directory of static files over HTTP, for pages that can't be loaded from a
// file: URL (for instance because they fetch their own resources).
type PageServer struct {
	server  *http.Server
	baseURL string
	errCh   chan error
}

// ServePages starts serving dir on localhost. A port of 0 picks any free port. It returns once the
// listener answers requests.
func ServePages(dir string, port int, logger Logger) (*PageServer, error) {
	if logger == nil {
		logger = NullLogger()
	}
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("could not listen on port %d: %w", port, err)
	}
	files := http.FileServer(http.Dir(dir))
	s := &PageServer{
		server: &http.Server{
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodHead && r.URL.Path == "/" {
					w.WriteHeader(200) // we use this to test whether our own listener is active yet
					return
				}
				logger.Printf("page server: %s %s", r.Method, r.URL.Path)
				files.ServeHTTP(w, r)
			}),
			ReadHeaderTimeout: httpListenerTimeout,
		},
		baseURL: fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port),
		errCh:   make(chan error, 1),
	}
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- err
		}
	}()

	if err := s.awaitListener(); err != nil {
		_ = s.Close()
		return nil, err
	}
	logger.Printf("serving %s at %s", dir, s.baseURL)
	return s, nil
}

// Wait till the server is definitely listening for requests before we run any tests
func (s *PageServer) awaitListener() error {
	deadline := time.NewTimer(httpListenerTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Millisecond * 10)
	defer ticker.Stop()
	for {
		select {
		case err := <-s.errCh:
			return err
		case <-deadline.C:
			return fmt.Errorf("could not detect own listener at %s", s.baseURL)
		case <-ticker.C:
			resp, err := http.DefaultClient.Head(s.baseURL)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == 200 {
					return nil
				}
			}
		}
	}
}

// BaseURL is the address of the served directory, without a trailing slash.
func (s *PageServer) BaseURL() string {
	return s.baseURL
}

// URL returns the address of a file relative to the served directory.
func (s *PageServer) URL(path string) string {
	return s.baseURL + "/" + trimLeadingSlashes(path)
}

func (s *PageServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func trimLeadingSlashes(path string) string {
	for len(path) > 0 && (path[0] == '/' || path[0] == '\\') {
		path = path[1:]
	}
	return path
}
