package testutil

import (
	"sync"

	"github.com/comalice/fwsm"
)

// Recorder records the order in which actions run and guards are
// evaluated. Entries are the names given to Action and Guard, guards
// suffixed with "?".
type Recorder struct {
	mu  sync.Mutex
	log []string
}

// Action returns an action recording name.
func (r *Recorder) Action(name string) fwsm.Action {
	return fwsm.ActionFunc(func(*fwsm.Descriptor) { r.add(name) })
}

// Guard returns a guard recording name and returning *result.
func (r *Recorder) Guard(name string, result *bool) fwsm.Guard {
	return fwsm.GuardFunc(func(*fwsm.Descriptor) bool {
		r.add(name + "?")
		return *result
	})
}

func (r *Recorder) add(entry string) {
	r.mu.Lock()
	r.log = append(r.log, entry)
	r.mu.Unlock()
}

// Log returns a copy of the entries recorded so far.
func (r *Recorder) Log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}

// Reset clears the log.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.log = nil
	r.mu.Unlock()
}
