package engine

import (
	"context"
	"testing"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/store/memory"
	"github.com/getstubd/stubd/pkg/stub"
)

func newStore(tb testing.TB) store.Store {
	tb.Helper()
	st := memory.New()
	if err := st.Open(context.Background()); err != nil {
		tb.Fatalf("Open() failed: %v", err)
	}
	tb.Cleanup(func() { _ = st.Close() })
	return st
}

func addProject(tb testing.TB, st store.Store, id, basePath string) *stub.Project {
	tb.Helper()
	p := &stub.Project{ID: id, Name: id, BasePath: basePath}
	if err := st.Projects().Create(context.Background(), p); err != nil {
		tb.Fatalf("create project %s: %v", id, err)
	}
	return p
}

func addEndpoint(tb testing.TB, st store.Store, id, projectID, method, path string, enabled bool) *stub.Endpoint {
	tb.Helper()
	e := &stub.Endpoint{
		ID:        id,
		ProjectID: projectID,
		Path:      path,
		Method:    method,
		Enabled:   enabled,
		Response: &stub.ResponseSpec{
			Status: 200,
			Body:   []byte(`{"from":"` + id + `"}`),
		},
	}
	if err := st.Endpoints().Create(context.Background(), e); err != nil {
		tb.Fatalf("create endpoint %s: %v", id, err)
	}
	return e
}

func resolve(t *testing.T, r *Resolver, method, path string) *Match {
	t.Helper()
	match, err := r.Resolve(context.Background(), method, path)
	if err != nil {
		t.Fatalf("Resolve(%s %s) failed: %v", method, path, err)
	}
	return match
}

func TestResolve_LongestPrefixWins(t *testing.T) {
	st := newStore(t)
	addProject(t, st, "short", "/api")
	addProject(t, st, "long", "/api/v1")
	addEndpoint(t, st, "e-short", "short", "GET", "/v1/users", true)
	addEndpoint(t, st, "e-long", "long", "GET", "/users", true)

	match := resolve(t, NewResolver(st), "GET", "/api/v1/users")
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Project.ID != "long" {
		t.Errorf("project = %s, want long", match.Project.ID)
	}
	if match.Endpoint.ID != "e-long" {
		t.Errorf("endpoint = %s, want e-long", match.Endpoint.ID)
	}
	if match.RelativePath != "/users" {
		t.Errorf("relative path = %q, want /users", match.RelativePath)
	}
}

func TestResolve_TieGoesToFirstStored(t *testing.T) {
	st := newStore(t)
	addProject(t, st, "first", "/api")
	addProject(t, st, "second", "/api")
	addEndpoint(t, st, "e-first", "first", "GET", "/x", true)
	addEndpoint(t, st, "e-second", "second", "GET", "/x", true)

	match := resolve(t, NewResolver(st), "GET", "/api/x")
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Project.ID != "first" {
		t.Errorf("project = %s, want first", match.Project.ID)
	}
}

func TestResolve_BasePathHitYieldsRootRelative(t *testing.T) {
	st := newStore(t)
	addProject(t, st, "p", "/api")
	addEndpoint(t, st, "e-root", "p", "GET", "/", true)

	match := resolve(t, NewResolver(st), "GET", "/api")
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.RelativePath != "/" {
		t.Errorf("relative path = %q, want /", match.RelativePath)
	}
	if match.Endpoint.ID != "e-root" {
		t.Errorf("endpoint = %s, want e-root", match.Endpoint.ID)
	}
}

func TestResolve_MethodMatchIsCaseSensitive(t *testing.T) {
	st := newStore(t)
	addProject(t, st, "p", "/api")
	addEndpoint(t, st, "e", "p", "GET", "/x", true)

	if match := resolve(t, NewResolver(st), "get", "/api/x"); match != nil {
		t.Errorf("lowercase method matched endpoint %s", match.Endpoint.ID)
	}
	if match := resolve(t, NewResolver(st), "POST", "/api/x"); match != nil {
		t.Errorf("wrong method matched endpoint %s", match.Endpoint.ID)
	}
}

func TestResolve_DisabledEndpointsSkipped(t *testing.T) {
	st := newStore(t)
	addProject(t, st, "p", "/api")
	addEndpoint(t, st, "e-off", "p", "GET", "/x", false)
	addEndpoint(t, st, "e-on", "p", "GET", "/x", true)

	match := resolve(t, NewResolver(st), "GET", "/api/x")
	if match == nil {
		t.Fatal("expected the enabled endpoint to match")
	}
	if match.Endpoint.ID != "e-on" {
		t.Errorf("endpoint = %s, want e-on", match.Endpoint.ID)
	}
}

func TestResolve_FirstStoredEndpointWins(t *testing.T) {
	st := newStore(t)
	addProject(t, st, "p", "/api")
	addEndpoint(t, st, "e-1", "p", "GET", "/x", true)
	addEndpoint(t, st, "e-2", "p", "GET", "/x", true)

	match := resolve(t, NewResolver(st), "GET", "/api/x")
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Endpoint.ID != "e-1" {
		t.Errorf("endpoint = %s, want e-1", match.Endpoint.ID)
	}
}

func TestResolve_NoFallbackToShorterPrefix(t *testing.T) {
	st := newStore(t)
	addProject(t, st, "short", "/api")
	addProject(t, st, "long", "/api/v1")
	// Only the shorter-prefix project could serve this path, but the
	// longer prefix claimed the request.
	addEndpoint(t, st, "e-short", "short", "GET", "/v1/users", true)

	if match := resolve(t, NewResolver(st), "GET", "/api/v1/users"); match != nil {
		t.Errorf("resolution fell back to project %s", match.Project.ID)
	}
}

func TestResolve_RootBasePathIsCatchAll(t *testing.T) {
	st := newStore(t)
	addProject(t, st, "root", "/")
	addProject(t, st, "api", "/api")
	addEndpoint(t, st, "e-root", "root", "GET", "/anything", true)
	addEndpoint(t, st, "e-api", "api", "GET", "/x", true)

	match := resolve(t, NewResolver(st), "GET", "/anything")
	if match == nil {
		t.Fatal("expected the root project to claim the request")
	}
	if match.Project.ID != "root" {
		t.Errorf("project = %s, want root", match.Project.ID)
	}
	if match.RelativePath != "/anything" {
		t.Errorf("relative path = %q, want /anything", match.RelativePath)
	}

	// A longer base path outranks the root catch-all.
	match = resolve(t, NewResolver(st), "GET", "/api/x")
	if match == nil || match.Project.ID != "api" {
		t.Fatalf("expected /api to outrank the catch-all, got %+v", match)
	}
}

func TestResolve_TrailingSlashBasePath(t *testing.T) {
	st := newStore(t)
	// Stored un-normalized; the resolver still computes a rooted relative.
	addProject(t, st, "p", "/api/")
	addEndpoint(t, st, "e", "p", "GET", "/users", true)

	match := resolve(t, NewResolver(st), "GET", "/api/users")
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.RelativePath != "/users" {
		t.Errorf("relative path = %q, want /users", match.RelativePath)
	}
}

func TestResolve_NoProjectClaimsPath(t *testing.T) {
	st := newStore(t)
	addProject(t, st, "p", "/api")
	addEndpoint(t, st, "e", "p", "GET", "/x", true)

	if match := resolve(t, NewResolver(st), "GET", "/other/x"); match != nil {
		t.Errorf("unexpected match: %+v", match)
	}
}

func TestResolve_EmptyStore(t *testing.T) {
	st := newStore(t)

	if match := resolve(t, NewResolver(st), "GET", "/anything"); match != nil {
		t.Errorf("unexpected match: %+v", match)
	}
}
