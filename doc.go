// Package strata is the configuration subsystem of the Strata clustered
// record database.
//
// Configuration flows through three stages. The gateway reads a YAML
// source and a schema document, parses the source into an ordered,
// path-addressable tree (pkg/value) and validates it against the
// schema (pkg/schema), which is closed: every key an operator may
// write is declared, so typos fail validation rather than being
// silently ignored. The application engine (pkg/conf) then walks a
// declarative registry of path-addressed field descriptors against the
// validated tree and writes each resolved value into the typed
// configuration records the server reads at startup.
//
// Values that carry a unit are written in the source as structured
// {value, unit} pairs and normalized to base units (seconds, bytes)
// before application. Map-valued sections with operator-chosen keys
// (namespaces, sets, TLS contexts, replication DCs) create one record
// per distinct name; log sinks are created by array position. Keys
// reserved for the enterprise build are refused under a community
// build before their values are inspected.
//
// Failures at any stage surface a structured error (pkg/errors) whose
// path detail is root-relative, so an operator can locate the
// offending key in the source document directly.
//
// # Quick start
//
//	cfg, _, err := conf.LoadAndApply("strata.yaml", "schema.yaml",
//	    conf.WithEdition(conf.Enterprise))
//	if err != nil {
//	    log.Fatalf("config: %v (at %s)", err, conf.ErrorPath(err))
//	}
//
// The strataconf command (cmd/strataconf) wraps the same entry points
// for validating and inspecting configuration files offline.
package strata
