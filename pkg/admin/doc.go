// Package admin implements the management API: login and session checks,
// project and endpoint CRUD, the settings singleton, request history,
// server stats, and OpenAPI import.
//
// The API is an http.Handler serving prefix-relative routes; the engine
// server mounts it under the admin prefix, so a request to
// /_admin/projects arrives here as /projects. Every response body is
// wrapped in the {success, data, error} envelope; deletes answer 204
// with no body.
//
// Middleware order is logging, then security headers, then CORS, then
// bearer auth. The CORS policy for this surface is the static one from
// the server configuration; it never rejects a request, it only decides
// which responses carry CORS headers. Bearer auth can be switched off
// via the authEnabled setting, which is read from the store on every
// request.
package admin
