// Package portability converts API descriptions from other tools into
// stubd records.
//
// The OpenAPI importer reads an OpenAPI 3.x or Swagger 2.0 document (JSON
// or YAML) and produces one project plus one endpoint per path/operation
// pair. Response bodies come from the document's examples where present;
// operations without an example get a small placeholder body derived from
// the status code.
//
// Importers only build records. Persisting them, assigning IDs, and
// validating against the store is the caller's job:
//
//	importer := &portability.OpenAPIImporter{}
//	result, err := importer.Import(data)
//	if err != nil {
//		return err
//	}
//	// result.Project and result.Endpoints are ready to store.
package portability
