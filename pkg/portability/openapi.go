// OpenAPI document import.

package portability

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/getstubd/stubd/pkg/stub"
)

// ImportError describes a failed import.
type ImportError struct {
	Message string
	Cause   error
}

func (e *ImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("openapi import: %s: %v", e.Message, e.Cause)
	}
	return "openapi import: " + e.Message
}

func (e *ImportError) Unwrap() error { return e.Cause }

// ImportResult is the set of records built from a document. IDs, project
// references, and timestamps are unset; the caller assigns them when it
// stores the records.
type ImportResult struct {
	Project   *stub.Project
	Endpoints []*stub.Endpoint
}

// OpenAPIImporter builds stub records from OpenAPI 3.x and Swagger 2.0
// documents. The zero value is ready to use.
type OpenAPIImporter struct{}

// Import parses a JSON or YAML document and returns the project and
// endpoints it describes. Templated path segments such as {id} are kept
// verbatim; endpoints match literally, so callers edit those after import.
func (i *OpenAPIImporter) Import(data []byte) (*ImportResult, error) {
	var versionCheck struct {
		OpenAPI string `json:"openapi" yaml:"openapi"`
		Swagger string `json:"swagger" yaml:"swagger"`
	}
	if err := yaml.Unmarshal(data, &versionCheck); err != nil {
		return nil, &ImportError{Message: "failed to parse document", Cause: err}
	}

	var (
		doc *openapi3.T
		err error
	)
	switch {
	case versionCheck.OpenAPI != "":
		loader := openapi3.NewLoader()
		doc, err = loader.LoadFromData(data)
		if err != nil {
			return nil, &ImportError{Message: "failed to load OpenAPI 3.x document", Cause: err}
		}
	case versionCheck.Swagger != "":
		doc, err = convertSwagger(data)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &ImportError{Message: "not an OpenAPI 3.x or Swagger 2.0 document"}
	}

	return buildResult(doc)
}

// convertSwagger upgrades a Swagger 2.0 document to OpenAPI 3.x.
func convertSwagger(data []byte) (*openapi3.T, error) {
	jsonData, err := toJSON(data)
	if err != nil {
		return nil, &ImportError{Message: "failed to parse Swagger 2.0 document", Cause: err}
	}
	var v2 openapi2.T
	if err := json.Unmarshal(jsonData, &v2); err != nil {
		return nil, &ImportError{Message: "failed to parse Swagger 2.0 document", Cause: err}
	}
	doc, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, &ImportError{Message: "failed to convert Swagger 2.0 document", Cause: err}
	}
	return doc, nil
}

// toJSON returns the data as JSON, converting from YAML when needed.
func toJSON(data []byte) ([]byte, error) {
	if json.Valid(data) {
		return data, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func buildResult(doc *openapi3.T) (*ImportResult, error) {
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, &ImportError{Message: "document declares no paths"}
	}

	project := &stub.Project{
		Name:        "Imported API",
		BasePath:    basePathFromServers(doc.Servers),
		Description: descriptionFromInfo(doc.Info),
	}
	if doc.Info != nil && strings.TrimSpace(doc.Info.Title) != "" {
		project.Name = strings.TrimSpace(doc.Info.Title)
	}

	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for path := range pathMap {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var endpoints []*stub.Endpoint
	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		operations := []struct {
			method string
			op     *openapi3.Operation
		}{
			{"GET", item.Get},
			{"POST", item.Post},
			{"PUT", item.Put},
			{"DELETE", item.Delete},
			{"PATCH", item.Patch},
			{"OPTIONS", item.Options},
			{"HEAD", item.Head},
		}
		for _, entry := range operations {
			if entry.op == nil {
				continue
			}
			endpoints = append(endpoints, operationToEndpoint(path, entry.method, entry.op))
		}
	}
	if len(endpoints) == 0 {
		return nil, &ImportError{Message: "document declares no operations"}
	}

	return &ImportResult{Project: project, Endpoints: endpoints}, nil
}

func descriptionFromInfo(info *openapi3.Info) string {
	if info == nil {
		return ""
	}
	if d := strings.TrimSpace(info.Description); d != "" {
		return d
	}
	if info.Version != "" {
		return "Imported from OpenAPI, version " + info.Version
	}
	return ""
}

// basePathFromServers derives the project base path from the first server
// URL that carries a path component. Without one the project sits at "/".
func basePathFromServers(servers openapi3.Servers) string {
	for _, server := range servers {
		if server == nil || server.URL == "" {
			continue
		}
		u, err := url.Parse(server.URL)
		if err != nil {
			continue
		}
		p := strings.TrimSuffix(u.Path, "/")
		if p != "" && strings.HasPrefix(p, "/") {
			return p
		}
	}
	return "/"
}

func operationToEndpoint(path, method string, op *openapi3.Operation) *stub.Endpoint {
	status, resp := bestResponse(op.Responses)
	body := responseBody(resp)

	headers := map[string]string{}
	if len(body) > 0 {
		headers["Content-Type"] = "application/json"
	}
	if body == nil && status != http.StatusNoContent {
		body = json.RawMessage(placeholderBody(status))
	}

	return &stub.Endpoint{
		Path:    path,
		Method:  method,
		Enabled: true,
		Response: &stub.ResponseSpec{
			Status:  status,
			Headers: headers,
			Body:    body,
		},
	}
}

// bestResponse picks the response to stub: 200 first, then the other
// common success codes, then the lowest 2xx, then the lowest numeric
// status, then the default response.
func bestResponse(responses *openapi3.Responses) (int, *openapi3.Response) {
	if responses == nil || responses.Len() == 0 {
		return http.StatusOK, nil
	}
	m := responses.Map()

	for _, key := range []string{"200", "201", "202", "204"} {
		if ref, ok := m[key]; ok && ref != nil {
			return mustStatus(key), ref.Value
		}
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if code, err := strconv.Atoi(key); err == nil && code >= 200 && code < 300 {
			return code, m[key].Value
		}
	}
	for _, key := range keys {
		if code, err := strconv.Atoi(key); err == nil {
			return code, m[key].Value
		}
	}
	if ref, ok := m["default"]; ok && ref != nil {
		return http.StatusOK, ref.Value
	}
	return http.StatusOK, nil
}

func mustStatus(key string) int {
	code, err := strconv.Atoi(key)
	if err != nil {
		return http.StatusOK
	}
	return code
}

// responseBody extracts an example body from the response content,
// preferring JSON media types. Precedence within a media type: the
// inline example, then the first named example, then the schema example.
func responseBody(resp *openapi3.Response) json.RawMessage {
	if resp == nil || len(resp.Content) == 0 {
		return nil
	}

	mt := resp.Content.Get("application/json")
	if mt == nil {
		types := make([]string, 0, len(resp.Content))
		for name := range resp.Content {
			types = append(types, name)
		}
		sort.Strings(types)
		mt = resp.Content[types[0]]
	}
	if mt == nil {
		return nil
	}

	if mt.Example != nil {
		if b, err := json.Marshal(mt.Example); err == nil {
			return b
		}
	}
	if len(mt.Examples) > 0 {
		names := make([]string, 0, len(mt.Examples))
		for name := range mt.Examples {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ref := mt.Examples[name]
			if ref == nil || ref.Value == nil || ref.Value.Value == nil {
				continue
			}
			if b, err := json.Marshal(ref.Value.Value); err == nil {
				return b
			}
		}
	}
	if mt.Schema != nil && mt.Schema.Value != nil && mt.Schema.Value.Example != nil {
		if b, err := json.Marshal(mt.Schema.Value.Example); err == nil {
			return b
		}
	}
	return nil
}

// placeholderBody fills in for operations whose document carries no
// example.
func placeholderBody(status int) string {
	switch status {
	case http.StatusOK:
		return `{"status": "ok"}`
	case http.StatusCreated:
		return `{"id": 1, "created": true}`
	case http.StatusBadRequest:
		return `{"error": "Bad Request"}`
	case http.StatusUnauthorized:
		return `{"error": "Unauthorized"}`
	case http.StatusForbidden:
		return `{"error": "Forbidden"}`
	case http.StatusNotFound:
		return `{"error": "Not Found"}`
	case http.StatusInternalServerError:
		return `{"error": "Internal Server Error"}`
	default:
		return fmt.Sprintf(`{"status": %d}`, status)
	}
}
