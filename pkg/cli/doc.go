// Package cli provides the command-line interface for stubd.
//
// The cli package implements all CLI commands for running and managing
// the stub server:
//   - serve: Launch the stub server with the management API mounted
//   - login: Authenticate against the management API and save the session
//   - logout: Discard the saved session token
//   - project: Manage projects (list, add, get, delete)
//   - endpoint: Manage stub endpoints (list, add, get, delete)
//   - import: Create a project from an OpenAPI document
//   - logs: View and clear the request history
//   - status: Show server health and statistics
//   - version: Show stubd version
//
// Management commands communicate with a running server through the
// admin API; the base URL comes from --admin-url or STUBD_ADMIN_URL and
// defaults to http://localhost:4780/_admin. The serve command runs the
// server in the foreground with graceful shutdown on SIGINT/SIGTERM.
//
// Usage:
//
//	stubd serve --port 4780 --backend file
//	stubd serve --config seed.yaml --no-auth
//	stubd login --username admin
//	stubd project add --name "Payments" --base-path /api/payments
//	stubd endpoint add --project <id> --path /charges --method POST --status 201 --body '{"id":"ch_1"}'
//	stubd import openapi.yaml --base-path /api
//	stubd logs --limit 20
package cli
