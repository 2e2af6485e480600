package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

func boolPtr(b bool) *bool { return &b }

func makeProject(id, name, basePath string) *stub.Project {
	return &stub.Project{ID: id, Name: name, BasePath: basePath}
}

func makeEndpoint(id, projectID, path, method string) *stub.Endpoint {
	return &stub.Endpoint{
		ID:        id,
		ProjectID: projectID,
		Path:      path,
		Method:    method,
		Response:  &stub.ResponseSpec{Status: 200, Body: json.RawMessage(`{}`)},
		Enabled:   true,
	}
}

func TestProjectStore_CRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	p := makeProject("p1", "Demo", "/api")
	if err := s.Projects().Create(ctx, p); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("Create() should stamp timestamps")
	}

	got, err := s.Projects().Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "Demo" || got.BasePath != "/api" {
		t.Errorf("unexpected project: %+v", got)
	}

	got.Name = "Renamed"
	if err := s.Projects().Update(ctx, got); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	updated, _ := s.Projects().Get(ctx, "p1")
	if updated.Name != "Renamed" {
		t.Errorf("expected renamed project, got %q", updated.Name)
	}

	if err := s.Projects().Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := s.Projects().Get(ctx, "p1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestProjectStore_DuplicateID(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Projects().Create(ctx, makeProject("p1", "One", "/a")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	err := s.Projects().Create(ctx, makeProject("p1", "Two", "/b"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestProjectStore_EmptyID(t *testing.T) {
	s := New()
	err := s.Projects().Create(context.Background(), makeProject("", "NoID", "/a"))
	if !errors.Is(err, store.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestProjectStore_ListKeepsCreationOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("p%d", i)
		if err := s.Projects().Create(ctx, makeProject(id, id, "/"+id)); err != nil {
			t.Fatalf("Create(%s) failed: %v", id, err)
		}
	}

	projects, err := s.Projects().List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	for i, p := range projects {
		want := fmt.Sprintf("p%d", i)
		if p.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, p.ID)
		}
	}
}

func TestProjectStore_DeleteCascadesEndpoints(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Projects().Create(ctx, makeProject("p1", "One", "/a"))
	s.Projects().Create(ctx, makeProject("p2", "Two", "/b"))
	s.Endpoints().Create(ctx, makeEndpoint("e1", "p1", "/x", "GET"))
	s.Endpoints().Create(ctx, makeEndpoint("e2", "p1", "/y", "POST"))
	s.Endpoints().Create(ctx, makeEndpoint("e3", "p2", "/z", "GET"))

	if err := s.Projects().Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	orphans, err := s.Endpoints().List(ctx, &store.EndpointFilter{ProjectID: "p1"})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("expected 0 endpoints after cascade, got %d", len(orphans))
	}

	survivors, _ := s.Endpoints().List(ctx, &store.EndpointFilter{ProjectID: "p2"})
	if len(survivors) != 1 {
		t.Errorf("expected p2's endpoint to survive, got %d", len(survivors))
	}
}

func TestEndpointStore_ListFilter(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Projects().Create(ctx, makeProject("p1", "One", "/a"))
	s.Endpoints().Create(ctx, makeEndpoint("e1", "p1", "/users", "GET"))
	s.Endpoints().Create(ctx, makeEndpoint("e2", "p1", "/users", "POST"))
	disabled := makeEndpoint("e3", "p1", "/orders", "GET")
	disabled.Enabled = false
	s.Endpoints().Create(ctx, disabled)

	byMethod, err := s.Endpoints().List(ctx, &store.EndpointFilter{Method: "GET"})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(byMethod) != 2 {
		t.Errorf("expected 2 GET endpoints, got %d", len(byMethod))
	}

	enabledOnly, _ := s.Endpoints().List(ctx, &store.EndpointFilter{Enabled: boolPtr(true)})
	if len(enabledOnly) != 2 {
		t.Errorf("expected 2 enabled endpoints, got %d", len(enabledOnly))
	}

	all, _ := s.Endpoints().List(ctx, nil)
	if len(all) != 3 {
		t.Errorf("expected 3 endpoints with nil filter, got %d", len(all))
	}
}

func TestEndpointStore_DeleteByProject(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Endpoints().Create(ctx, makeEndpoint("e1", "p1", "/x", "GET"))
	s.Endpoints().Create(ctx, makeEndpoint("e2", "p1", "/y", "GET"))
	s.Endpoints().Create(ctx, makeEndpoint("e3", "p2", "/z", "GET"))

	n, err := s.Endpoints().DeleteByProject(ctx, "p1")
	if err != nil {
		t.Fatalf("DeleteByProject() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	remaining, _ := s.Endpoints().List(ctx, nil)
	if len(remaining) != 1 || remaining[0].ID != "e3" {
		t.Errorf("unexpected remaining endpoints: %+v", remaining)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Projects().Create(ctx, makeProject("p1", "Demo", "/api"))

	first, _ := s.Projects().Get(ctx, "p1")
	first.Name = "Mutated"

	second, _ := s.Projects().Get(ctx, "p1")
	if second.Name != "Demo" {
		t.Error("Get() must return a copy, not shared state")
	}
}

func TestSettingsStore_LazyDefaults(t *testing.T) {
	s := New()
	ctx := context.Background()

	settings, err := s.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if len(settings.CORSOrigins) != 1 || settings.CORSOrigins[0] != "*" {
		t.Errorf("expected default wildcard origins, got %v", settings.CORSOrigins)
	}
	if !settings.AuthEnabled {
		t.Error("auth should be enabled by default")
	}
}

func TestSettingsStore_PartialUpdate(t *testing.T) {
	s := New()
	ctx := context.Background()

	origins := []string{"https://a.com"}
	merged, err := s.Settings().Update(ctx, &stub.SettingsPatch{CORSOrigins: &origins})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if len(merged.CORSOrigins) != 1 || merged.CORSOrigins[0] != "https://a.com" {
		t.Errorf("origins not merged: %v", merged.CORSOrigins)
	}
	// Defaults survive on untouched fields
	if len(merged.CORSHeaders) != 2 {
		t.Errorf("corsHeaders should keep defaults, got %v", merged.CORSHeaders)
	}

	// A later read sees the merged state
	stored, _ := s.Settings().Get(ctx)
	if stored.CORSOrigins[0] != "https://a.com" {
		t.Errorf("merged settings not persisted: %v", stored.CORSOrigins)
	}
}
