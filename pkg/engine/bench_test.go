package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/getstubd/stubd/pkg/config"
)

func BenchmarkResolve(b *testing.B) {
	st := newStore(b)
	for p := 0; p < 10; p++ {
		projectID := fmt.Sprintf("svc%d", p)
		addProject(b, st, projectID, "/"+projectID)
		for e := 0; e < 20; e++ {
			id := fmt.Sprintf("%s-r%d", projectID, e)
			addEndpoint(b, st, id, projectID, "GET", fmt.Sprintf("/r%d", e), true)
		}
	}
	r := NewResolver(st)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		match, err := r.Resolve(ctx, "GET", "/svc7/r13")
		if err != nil {
			b.Fatalf("Resolve failed: %v", err)
		}
		if match == nil {
			b.Fatal("expected a match")
		}
	}
}

func BenchmarkConcurrentStubRequests(b *testing.B) {
	st := newStore(b)
	addProject(b, st, "bench", "/api")
	addEndpoint(b, st, "bench-get", "bench", "GET", "/bench", true)

	cfg := config.DefaultServerConfiguration()
	cfg.Port = 0
	srv := NewServer(cfg, WithStore(st))
	if err := srv.Start(); err != nil {
		b.Fatalf("Start() failed: %v", err)
	}
	defer func() { _ = srv.Stop() }()

	client := &http.Client{}
	url := fmt.Sprintf("http://127.0.0.1:%d/api/bench", srv.Port())

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			resp, err := client.Get(url)
			if err == nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}
	})
}
