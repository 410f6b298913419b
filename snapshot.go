package fwsm

// Snapshot is a copy of the runtime block of a descriptor and, recursively,
// of the machines embedded in it. The table and the registry are not part
// of a snapshot.
type Snapshot struct {
	Name         string               `json:"name,omitempty" yaml:"name,omitempty"`
	State        StateID              `json:"state" yaml:"state"`
	ExecCnt      uint64               `json:"exec_cnt" yaml:"exec_cnt"`
	StateExecCnt uint64               `json:"state_exec_cnt" yaml:"state_exec_cnt"`
	TransCnt     uint64               `json:"trans_cnt" yaml:"trans_cnt"`
	ErrCode      ErrCode              `json:"err_code" yaml:"err_code"`
	Cursors      []int                `json:"cursors" yaml:"cursors"`
	Embedded     map[StateID]Snapshot `json:"embedded,omitempty" yaml:"embedded,omitempty"`
}

// Snapshot returns the runtime block of d and of its embedded machines.
func (d *Descriptor) Snapshot() Snapshot {
	s := Snapshot{
		Name:         d.name,
		State:        d.cur,
		ExecCnt:      d.execCnt,
		StateExecCnt: d.stateExecCnt,
		TransCnt:     d.transCnt,
		ErrCode:      d.errCode,
		Cursors:      append([]int(nil), d.cursors...),
	}
	for i, esm := range d.esm {
		if esm == nil {
			continue
		}
		if s.Embedded == nil {
			s.Embedded = make(map[StateID]Snapshot)
		}
		s.Embedded[StateID(i+1)] = esm.Snapshot()
	}
	return s
}

// Restore overwrites the runtime block of d, and of its embedded machines,
// with s. No action runs. The snapshot must have been taken from a
// descriptor walking a table of the same shape with the same embedded
// machines; otherwise Restore returns ErrSnapshotMismatch and changes
// nothing.
func (d *Descriptor) Restore(s Snapshot) error {
	if d.table == nil {
		return ErrNoTable
	}
	if d.running {
		return ErrReentrant
	}
	if code := d.fits(s); code != ErrNone {
		return code
	}
	d.restore(s)
	return nil
}

func (d *Descriptor) fits(s Snapshot) ErrCode {
	if d.table == nil {
		return ErrSnapshotMismatch
	}
	if s.State < 0 || int(s.State) > len(d.table.states) {
		return ErrSnapshotMismatch
	}
	if len(s.Cursors) != len(d.cursors) {
		return ErrSnapshotMismatch
	}
	for id, sub := range s.Embedded {
		esm := d.Embedded(id)
		if esm == nil {
			return ErrSnapshotMismatch
		}
		if code := esm.fits(sub); code != ErrNone {
			return code
		}
	}
	return ErrNone
}

func (d *Descriptor) restore(s Snapshot) {
	d.cur = s.State
	d.execCnt = s.ExecCnt
	d.stateExecCnt = s.StateExecCnt
	d.transCnt = s.TransCnt
	d.errCode = s.ErrCode
	copy(d.cursors, s.Cursors)
	if d.cur != 0 {
		d.locked = true
	}
	for i, esm := range d.esm {
		if esm == nil {
			continue
		}
		sub, ok := s.Embedded[StateID(i+1)]
		if !ok {
			sub = Snapshot{Cursors: make([]int, len(esm.cursors))}
		}
		esm.restore(sub)
	}
}
