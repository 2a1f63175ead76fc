// Package core runs CEAP imports on behalf of the transport layers.
//
// It sits between the HTTP handlers or the CLI and the importer package,
// adding what a single pipeline run does not do on its own:
//
//   - one transaction per import, committed only if the run succeeds
//   - a bound on concurrent imports ([ImportLimiter]) and on run time
//   - import ids, structured logs and Prometheus metrics
//   - mapping of failures to coded client messages ([MapError])
//
// # Error Handling
//
// Errors caused by the uploaded data ([IsRejected]) should be reported to
// the client with the message from [MapError]. Anything else is a server
// failure; its technical text belongs in the logs only.
//
// Codes are grouped by category:
//
//   - VAL001-VAL006: row content (dates, amounts, CPF checksum)
//   - FILE001-FILE006: file size, shape, encoding and interrupted uploads
//   - IMP001-IMP003: busy, cancelled or timed out imports
//   - DB001-DB006: storage failures
package core
