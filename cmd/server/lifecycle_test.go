package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeServer struct {
	rec       *recorder
	worker    *fakeWorker
	startErr  error
	closed    chan struct{}
	closeOnce sync.Once
}

func (s *fakeServer) Start(string) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-s.closed
	return http.ErrServerClosed
}

func (s *fakeServer) Shutdown(context.Context) error {
	// An in-flight request finishing during shutdown still sees a live worker.
	if s.worker.stopped() {
		s.rec.add("worker stopped before shutdown finished")
	}
	s.rec.add("http shutdown")
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

type fakeWorker struct {
	rec  *recorder
	done chan struct{}
}

func (w *fakeWorker) Run(ctx context.Context) error {
	<-ctx.Done()
	w.rec.add("worker stopped")
	close(w.done)
	return nil
}

func (w *fakeWorker) stopped() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

func newFakes() (*recorder, *fakeServer, *fakeWorker) {
	rec := &recorder{}
	w := &fakeWorker{rec: rec, done: make(chan struct{})}
	return rec, &fakeServer{rec: rec, worker: w, closed: make(chan struct{})}, w
}

func TestServe_ShutsDownHTTPBeforeWorker(t *testing.T) {
	rec, srv, w := newFakes()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- serve(ctx, srv, ":0", w, time.Second, zerolog.Nop()) }()

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}

	assert.Equal(t, []string{"http shutdown", "worker stopped"}, rec.list())
}

func TestServe_StartFailureStopsEverything(t *testing.T) {
	rec, srv, w := newFakes()
	srv.startErr = errors.New("address in use")

	err := serve(context.Background(), srv, ":0", w, time.Second, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, srv.startErr)
	assert.Equal(t, []string{"http shutdown", "worker stopped"}, rec.list())
}
