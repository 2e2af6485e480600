// Package config defines the stubd server configuration and the seed
// collection format.
//
// ServerConfiguration carries the runtime settings for the single HTTP
// listener: the port, the management API prefix and credentials, the
// storage backend selection, and timeouts. Values usually arrive from CLI
// flags and STUBD_* environment variables; Normalize fills in defaults
// for anything left unset.
//
// Seed collections are declarative YAML or JSON files loaded into the
// store at startup:
//
//	version: 1
//	name: demo
//	settings:
//	  defaultHeaders:
//	    X-Served-By: stubd
//	projects:
//	  - name: Demo
//	    basePath: /api/v1
//	    endpoints:
//	      - method: GET
//	        path: /users
//	        response:
//	          status: 200
//	          body: {ok: true}
//
// Seeding is idempotent per project name: re-applying the same file
// updates the seeded projects in place instead of duplicating them.
package config
