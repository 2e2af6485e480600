package portability

import (
	"errors"
	"strings"
	"testing"
)

const petstoreYAML = `
openapi: "3.0.3"
info:
  title: Petstore
  description: A sample API.
  version: "1.2.0"
servers:
  - url: https://api.example.com/v1
paths:
  /pets:
    get:
      summary: List pets
      responses:
        "200":
          description: OK
          content:
            application/json:
              example:
                - id: 1
                  name: Rex
    post:
      summary: Create a pet
      responses:
        "201":
          description: Created
  /pets/{petId}:
    delete:
      summary: Remove a pet
      responses:
        "204":
          description: No Content
`

func TestOpenAPIImport(t *testing.T) {
	importer := &OpenAPIImporter{}
	result, err := importer.Import([]byte(petstoreYAML))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if result.Project.Name != "Petstore" {
		t.Errorf("project name = %q, want %q", result.Project.Name, "Petstore")
	}
	if result.Project.BasePath != "/v1" {
		t.Errorf("project basePath = %q, want %q", result.Project.BasePath, "/v1")
	}
	if result.Project.Description != "A sample API." {
		t.Errorf("project description = %q", result.Project.Description)
	}

	if len(result.Endpoints) != 3 {
		t.Fatalf("got %d endpoints, want 3", len(result.Endpoints))
	}

	// Paths sorted, methods in declaration order within a path.
	first := result.Endpoints[0]
	if first.Method != "GET" || first.Path != "/pets" {
		t.Errorf("first endpoint = %s %s, want GET /pets", first.Method, first.Path)
	}
	if first.Response.Status != 200 {
		t.Errorf("first endpoint status = %d, want 200", first.Response.Status)
	}
	if want := `[{"id":1,"name":"Rex"}]`; string(first.Response.Body) != want {
		t.Errorf("first endpoint body = %s, want %s", first.Response.Body, want)
	}
	if first.Response.Headers["Content-Type"] != "application/json" {
		t.Errorf("first endpoint Content-Type = %q", first.Response.Headers["Content-Type"])
	}
	if !first.Enabled {
		t.Error("imported endpoints should be enabled")
	}

	second := result.Endpoints[1]
	if second.Method != "POST" || second.Path != "/pets" {
		t.Errorf("second endpoint = %s %s, want POST /pets", second.Method, second.Path)
	}
	if second.Response.Status != 201 {
		t.Errorf("second endpoint status = %d, want 201", second.Response.Status)
	}
	// No example in the document, so a placeholder body is filled in.
	if want := `{"id": 1, "created": true}`; string(second.Response.Body) != want {
		t.Errorf("second endpoint body = %s, want %s", second.Response.Body, want)
	}

	third := result.Endpoints[2]
	if third.Method != "DELETE" || third.Path != "/pets/{petId}" {
		t.Errorf("third endpoint = %s %s, want DELETE /pets/{petId}", third.Method, third.Path)
	}
	if third.Response.Status != 204 {
		t.Errorf("third endpoint status = %d, want 204", third.Response.Status)
	}
	if len(third.Response.Body) != 0 {
		t.Errorf("204 endpoint should have no body, got %s", third.Response.Body)
	}
}

func TestOpenAPIImport_JSON(t *testing.T) {
	doc := `{
		"openapi": "3.0.0",
		"info": {"title": "Minimal", "version": "1.0"},
		"paths": {
			"/ping": {
				"get": {
					"responses": {
						"200": {
							"description": "OK",
							"content": {
								"application/json": {
									"schema": {"type": "object", "example": {"pong": true}}
								}
							}
						}
					}
				}
			}
		}
	}`

	importer := &OpenAPIImporter{}
	result, err := importer.Import([]byte(doc))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Project.BasePath != "/" {
		t.Errorf("basePath = %q, want / when no servers are declared", result.Project.BasePath)
	}
	if len(result.Endpoints) != 1 {
		t.Fatalf("got %d endpoints, want 1", len(result.Endpoints))
	}
	if want := `{"pong":true}`; string(result.Endpoints[0].Response.Body) != want {
		t.Errorf("schema example body = %s, want %s", result.Endpoints[0].Response.Body, want)
	}
}

func TestOpenAPIImport_Swagger2(t *testing.T) {
	doc := `
swagger: "2.0"
info:
  title: Legacy API
  version: "0.9"
host: api.example.com
basePath: /v2
schemes: [https]
paths:
  /status:
    get:
      produces: [application/json]
      responses:
        "200":
          description: OK
          schema:
            type: object
            example:
              up: true
`

	importer := &OpenAPIImporter{}
	result, err := importer.Import([]byte(doc))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Project.Name != "Legacy API" {
		t.Errorf("project name = %q, want %q", result.Project.Name, "Legacy API")
	}
	if result.Project.BasePath != "/v2" {
		t.Errorf("project basePath = %q, want /v2", result.Project.BasePath)
	}
	if len(result.Endpoints) != 1 {
		t.Fatalf("got %d endpoints, want 1", len(result.Endpoints))
	}
	ep := result.Endpoints[0]
	if ep.Method != "GET" || ep.Path != "/status" {
		t.Errorf("endpoint = %s %s, want GET /status", ep.Method, ep.Path)
	}
	if want := `{"up":true}`; string(ep.Response.Body) != want {
		t.Errorf("body = %s, want %s", ep.Response.Body, want)
	}
}

func TestOpenAPIImport_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "not a spec",
			data: `{"name": "just some JSON"}`,
			want: "not an OpenAPI",
		},
		{
			name: "no paths",
			data: "openapi: \"3.0.0\"\ninfo:\n  title: Empty\n  version: \"1.0\"\npaths: {}\n",
			want: "no paths",
		},
		{
			name: "unparseable",
			data: "{unbalanced",
			want: "failed to parse",
		},
	}

	importer := &OpenAPIImporter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.Import([]byte(tt.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			var importErr *ImportError
			if !errors.As(err, &importErr) {
				t.Fatalf("error type = %T, want *ImportError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}
