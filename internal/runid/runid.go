// Package runid generates the per-process run identifier described in
// SPEC_FULL.md §3, attached to log lines and metric labels so that
// concurrently running processes can be told apart. Each cmd/ front end
// generates one id per process; a bridge's two directions share it. It
// never influences scheduling.
package runid

import "github.com/rs/xid"

// New returns a new, process-unique run id.
func New() string {
	return xid.New().String()
}
