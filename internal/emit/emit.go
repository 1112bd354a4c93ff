// Package emit deduplicates warnings by message key so repeated conditions
// surface once per process run.
package emit

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	mu   sync.Mutex
	seen = map[string]struct{}{}
)

// Once logs the warning the first time its message is seen and drops every
// repetition.
func Once(msg string) {
	mu.Lock()
	_, dup := seen[msg]
	seen[msg] = struct{}{}
	mu.Unlock()
	if !dup {
		log.Warn(msg)
	}
}

// Oncef is Once with fields attached to the log entry. Deduplication is
// keyed on msg alone.
func Oncef(fields log.Fields, msg string) {
	mu.Lock()
	_, dup := seen[msg]
	seen[msg] = struct{}{}
	mu.Unlock()
	if !dup {
		log.WithFields(fields).Warn(msg)
	}
}

// Reset clears the dedup set. Intended for tests.
func Reset() {
	mu.Lock()
	seen = map[string]struct{}{}
	mu.Unlock()
}
