package realtime

import (
	"sort"

	"github.com/comalice/fwsm"
)

// Command is a queued trigger with sequencing metadata. An empty Machine
// addresses every machine of the runtime.
type Command struct {
	Machine  string
	Trigger  fwsm.Trigger
	Priority int
	Seq      uint64
}

// sortCommands orders commands deterministically: higher priority first,
// then by sequence number.
func sortCommands(cmds []Command) {
	sort.SliceStable(cmds, func(i, j int) bool {
		if cmds[i].Priority != cmds[j].Priority {
			return cmds[i].Priority > cmds[j].Priority
		}
		return cmds[i].Seq < cmds[j].Seq
	})
}
