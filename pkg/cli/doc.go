// Package cli provides the command-line interface for wiretap.
//
// The CLI is a diagnostic companion to the library: it issues requests
// through a fully tracked client and manages the project file an embedding
// application would load.
//
//   - probe: send one HTTP request through a tracked client and show the
//     capture events it produces
//   - captures: list and add capture definitions in the project file
//   - config: show the effective tracking configuration, validate a file
//   - init: create a starter wiretap.yaml
//   - version: show wiretap version
//
// Commands that read the project file honor --config; without it the file
// is discovered via WIRETAP_CONFIG and the working directory, the same way
// the library does.
//
// Usage:
//
//	wiretap probe https://api.example.com/v1/users
//	wiretap probe -X POST -d '{"plan":"pro"}' https://api.example.com/v1/orders
//	wiretap captures add --method POST --url api.stripe.com/v1/charges
//	wiretap captures list
//	wiretap config show --json
//	wiretap config validate ./wiretap.yaml
package cli
