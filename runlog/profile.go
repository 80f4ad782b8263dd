package runlog

import (
	"errors"
	"fmt"

	. "stdpbench/common"
)

// Times are in seconds.  Memory is whatever the simulator reports, the legacy logs have none.
type Metrics struct {
	Setup  float64
	Sim    float64
	Memory float64
}

// A Profile knows where the metrics live in one log format.  Extract must be pure.  When the
// simulator's log layout changes again, add a profile rather than changing an existing one.

type Profile struct {
	Name    string
	Extract func(t Table) (Metrics, error)
}

var (
	// The runtimes_<n>.dat files: setup in (0,2), simulation in (1,2).
	Legacy = Profile{Name: ProfileLegacy, Extract: extractLegacy}

	// The logfile_<n>.dat files: setup is split over (4,2) and (5,2), memory is (11,2), and
	// simulation is (13,2).
	Current = Profile{Name: ProfileCurrent, Extract: extractCurrent}
)

func Profiles() []Profile {
	return []Profile{Legacy, Current}
}

func LookupProfile(name string) (Profile, error) {
	for _, p := range Profiles() {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("Unknown log profile %q", name)
}

func extractLegacy(t Table) (Metrics, error) {
	setup, e1 := t.Cell(0, 2)
	sim, e2 := t.Cell(1, 2)
	if err := errors.Join(e1, e2); err != nil {
		return Metrics{}, err
	}
	return Metrics{Setup: setup, Sim: sim}, nil
}

func extractCurrent(t Table) (Metrics, error) {
	build, e1 := t.Cell(4, 2)
	connect, e2 := t.Cell(5, 2)
	mem, e3 := t.Cell(11, 2)
	sim, e4 := t.Cell(13, 2)
	if err := errors.Join(e1, e2, e3, e4); err != nil {
		return Metrics{}, err
	}
	return Metrics{Setup: build + connect, Sim: sim, Memory: mem}, nil
}
