// Package web provides the HTTP surface for the rotation-sensor daemon:
// a status page, a JSON endpoint, and the /angle endpoint registered on
// the device node.
package web

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/sweeney/rotation-sensor/internal/device"
	"github.com/sweeney/rotation-sensor/internal/status"
)

// maxWriteBytes bounds calibration request bodies.
const maxWriteBytes = 4096

// Server serves the status page and the angle endpoint over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	node       *device.Node
}

// New creates a Server that reads state from the given tracker and serves
// the device node at /angle.
func New(addr string, tracker *status.Tracker, node *device.Node) *Server {
	s := &Server{tracker: tracker, node: node}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/angle", s.handleAngle)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handleAngle is the byte-stream endpoint: GET streams the formatted angle
// through the node's cursor-based read, POST/PUT passes the body to the
// node's calibration write.
func (s *Server) handleAngle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.readAngle(w)
	case http.MethodPost, http.MethodPut:
		s.writeAngle(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, PUT")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) readAngle(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	// Deliberately chunked so the node's offset cursor is exercised the
	// same way a short userspace read buffer would.
	var off int64
	buf := make([]byte, 4)
	for {
		n, err := s.node.Read(buf, &off)
		if err != nil || n == 0 {
			return
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return
		}
	}
}

func (s *Server) writeAngle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWriteBytes))
	if err != nil {
		// Body copy from the caller failed: the transfer-fault case.
		http.Error(w, device.ErrFault.Error(), http.StatusInternalServerError)
		return
	}

	if _, err := s.node.Write(body); err != nil {
		switch {
		case errors.Is(err, device.ErrInvalidArgument):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, device.ErrNoMemory):
			http.Error(w, err.Error(), http.StatusInsufficientStorage)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
