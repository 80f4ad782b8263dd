package runlog

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	. "stdpbench/common"
	"stdpbench/filesys"
	"stdpbench/status"
)

func init() {
	// Skipped files are expected in these tests
	Log.SetLevel(status.LogLevelCritical)
}

// A "current" log with the given values at the documented offsets and filler elsewhere.
func currentLog(build, connect, mem, sim float64) []byte {
	var b strings.Builder
	b.WriteString("# timing log\n")
	for row := 0; row < 15; row++ {
		v := float64(row) * 100
		switch row {
		case 4:
			v = build
		case 5:
			v = connect
		case 11:
			v = mem
		case 13:
			v = sim
		}
		fmt.Fprintf(&b, "%d 0 %g\n", row, v)
	}
	return []byte(b.String())
}

func legacyLog(setup, sim float64) []byte {
	return []byte(fmt.Sprintf("0 0 %g\n1 0 %g\n", setup, sim))
}

func TestParseTable(t *testing.T) {
	tbl, err := ParseTable(strings.NewReader("# header\n1 2 3\n\n  4\t5 6  # trailing\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tbl, Table{{1, 2, 3}, {4, 5, 6}}) {
		t.Fatalf("Got %v", tbl)
	}
	if _, err := ParseTable(strings.NewReader("")); err != ErrEmptyTable {
		t.Fatalf("Empty: %v", err)
	}
	if _, err := ParseTable(strings.NewReader("1 2 3\n4 5\n")); err == nil {
		t.Fatal("Ragged table accepted")
	}
	if _, err := ParseTable(strings.NewReader("1 2 x\n")); err == nil {
		t.Fatal("Bad number accepted")
	}
}

func TestLegacyProfile(t *testing.T) {
	tbl := Table{{0, 0, 1.5}, {1, 0, 75.25}}
	m, err := Legacy.Extract(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if m != (Metrics{Setup: 1.5, Sim: 75.25, Memory: 0}) {
		t.Fatalf("Got %+v", m)
	}
	if _, err := Legacy.Extract(Table{{0, 0, 1}}); err == nil {
		t.Fatal("Short table accepted")
	}
	if _, err := Legacy.Extract(Table{{0, 0}, {1, 1}}); err == nil {
		t.Fatal("Narrow table accepted")
	}
}

func TestCurrentProfile(t *testing.T) {
	tbl, err := ParseTable(strings.NewReader(string(currentLog(100, 229.5, 4427319, 48.5))))
	if err != nil {
		t.Fatal(err)
	}
	m, err := Current.Extract(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if m != (Metrics{Setup: 329.5, Sim: 48.5, Memory: 4427319}) {
		t.Fatalf("Got %+v", m)
	}
	if _, err := Current.Extract(tbl[:13]); err == nil {
		t.Fatal("13-row table accepted")
	}
}

func TestLookupProfile(t *testing.T) {
	for _, p := range Profiles() {
		q, err := LookupProfile(p.Name)
		if err != nil || q.Name != p.Name {
			t.Fatalf("Lookup %s: %v", p.Name, err)
		}
	}
	if _, err := LookupProfile("json"); err == nil {
		t.Fatal("Unknown profile accepted")
	}
}

func TestSummarize(t *testing.T) {
	results := []FileResult{
		{Path: "a", Metrics: Metrics{Setup: 1, Sim: 10, Memory: 100}},
		{Path: "b", Err: ErrEmptyTable},
		{Path: "c", Metrics: Metrics{Setup: 2, Sim: 20, Memory: 200}},
		{Path: "d", Metrics: Metrics{Setup: 3, Sim: 60, Memory: 300}},
	}
	pt, ok := Summarize(64, results)
	if !ok {
		t.Fatal("Expected a point")
	}
	if pt != (Point{Procs: 64, Setup: 2, Sim: 30, Mem: 200, Files: 3}) {
		t.Fatalf("Got %+v", pt)
	}
	if _, ok := Summarize(64, []FileResult{{Path: "x", Err: ErrEmptyTable}}); ok {
		t.Fatal("No successful files should give no point")
	}
}

func testConfig(dataDir string) *AggregateConfig {
	cfg := DefaultConfig().Aggregate
	cfg.DataDir = dataDir
	cfg.Trials = 5
	cfg.Jobs = 2
	return &cfg
}

// Three files for 4096 procs, two good and one empty.
func TestAggregateEndToEnd(t *testing.T) {
	dir, err := filesys.PopulateTestData(
		"runlog",
		filesys.TestFile{Dir: "sim_openmp_N4096", Name: "logfile_0.dat", Data: currentLog(1, 2, 10, 50.0)},
		filesys.TestFile{Dir: "sim_openmp_N4096", Name: "logfile_1.dat", Data: nil},
		filesys.TestFile{Dir: "sim_openmp_N4096", Name: "logfile_2.dat", Data: currentLog(3, 4, 30, 60.0)},
	)
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg := testConfig(dir)
	cfg.Trials = 3
	src := DataSource{Label: "hybrid", DirPrefix: "sim_openmp_N", FileStem: "logfile_", Profile: ProfileCurrent}
	r, err := Aggregate(context.Background(), cfg, src, []int{4096})
	if err != nil {
		t.Fatal(err)
	}
	s := r.Series
	if s.Len() != 1 || s.Procs[0] != 4096 {
		t.Fatalf("Series %+v", s)
	}
	if s.Sim[0] != 55.0 || s.Files[0] != 2 {
		t.Fatalf("Got sim %v over %d files", s.Sim[0], s.Files[0])
	}
	if s.Setup[0] != 5.0 || s.Mem[0] != 20.0 {
		t.Fatalf("Got setup %v mem %v", s.Setup[0], s.Mem[0])
	}
	if len(r.Dropped) != 0 {
		t.Fatalf("Dropped %v", r.Dropped)
	}
}

func TestAggregateDropsEmptyConfigurations(t *testing.T) {
	dir, err := filesys.PopulateTestData(
		"runlog",
		filesys.TestFile{Dir: "sim_flatmpi_N2048", Name: "runtimes_0.dat", Data: legacyLog(1, 80)},
		filesys.TestFile{Dir: "sim_flatmpi_N2048", Name: "runtimes_3.dat", Data: legacyLog(3, 70)},
		// Only garbage for 4096
		filesys.TestFile{Dir: "sim_flatmpi_N4096", Name: "runtimes_0.dat", Data: []byte("x y z\n")},
		filesys.TestFile{Dir: "sim_flatmpi_N12288", Name: "runtimes_4.dat", Data: legacyLog(2, 110)},
	)
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg := testConfig(dir)
	src := DataSource{Label: "flat", DirPrefix: "sim_flatmpi_N", FileStem: "runtimes_", Profile: ProfileLegacy}
	r, err := Aggregate(context.Background(), cfg, src, []int{2048, 4096, 8192, 12288})
	if err != nil {
		t.Fatal(err)
	}
	s := r.Series
	if !reflect.DeepEqual(s.Procs, []int{2048, 12288}) {
		t.Fatalf("Procs %v", s.Procs)
	}
	if len(s.Sim) != 2 || len(s.Setup) != 2 || len(s.Mem) != 2 || len(s.Files) != 2 {
		t.Fatalf("Unequal lengths %+v", s)
	}
	if !reflect.DeepEqual(s.Sim, []float64{75, 110}) || !reflect.DeepEqual(s.Setup, []float64{2, 2}) {
		t.Fatalf("Sim %v Setup %v", s.Sim, s.Setup)
	}
	if !reflect.DeepEqual(s.Mem, []float64{0, 0}) || !reflect.DeepEqual(s.Files, []int{2, 1}) {
		t.Fatalf("Mem %v Files %v", s.Mem, s.Files)
	}
	if len(r.Dropped) != 2 || r.Dropped[0].Procs != 4096 || r.Dropped[1].Procs != 8192 {
		t.Fatalf("Dropped %+v", r.Dropped)
	}
	if r.Dropped[0].Attempts != 5 {
		t.Fatalf("Attempts %d", r.Dropped[0].Attempts)
	}
	// The malformed trial 0 is reported, not the missing trials 1-4
	if reason := r.Dropped[0].Reason; !strings.Contains(reason, "4 missing") ||
		!strings.Contains(reason, "runtimes_0.dat") || !strings.Contains(reason, "bad number") {
		t.Fatalf("Reason %q", reason)
	}
	if reason := r.Dropped[1].Reason; reason != "all 5 trial files missing" {
		t.Fatalf("Reason %q", reason)
	}
}

func TestDropReasonSkipsMissing(t *testing.T) {
	missing := &os.PathError{Op: "open", Path: "runtimes_0.dat", Err: os.ErrNotExist}
	reason := dropReason([]FileResult{
		{Path: "runtimes_0.dat", Err: missing},
		{Path: "runtimes_1.dat", Err: ErrEmptyTable},
	})
	if !strings.Contains(reason, "runtimes_1.dat") || !strings.Contains(reason, "1 missing") {
		t.Fatalf("Got %q", reason)
	}
}

func TestAggregateSources(t *testing.T) {
	dir, err := filesys.PopulateTestData(
		"runlog",
		filesys.TestFile{Dir: "sim_openmp_N2048", Name: "runtimes_0.dat", Data: legacyLog(1.5, 75)},
		filesys.TestFile{Dir: "sim_openmp_N10000", Name: "logfile_0.dat", Data: currentLog(100, 200, 7, 48)},
	)
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg := testConfig(dir)
	r, err := AggregateSources(context.Background(), cfg, cfg.HybridSources(), cfg.Procs())
	if err != nil {
		t.Fatal(err)
	}
	if r.Series.Label != cfg.HybridLabel {
		t.Fatalf("Label %q", r.Series.Label)
	}
	if !reflect.DeepEqual(r.Series.Procs, []int{2048, 10000}) {
		t.Fatalf("Procs %v", r.Series.Procs)
	}
	if !reflect.DeepEqual(r.Series.Setup, []float64{1.5, 300}) {
		t.Fatalf("Setup %v", r.Series.Setup)
	}
	// 5 configurations per source, one present in each
	if len(r.Dropped) != 8 {
		t.Fatalf("Dropped %d", len(r.Dropped))
	}
}

func TestAggregateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := testConfig(t.TempDir())
	src := DataSource{Label: "x", DirPrefix: "d", FileStem: "f", Profile: ProfileLegacy}
	if _, err := Aggregate(ctx, cfg, src, []int{1, 2, 3}); err == nil {
		t.Fatal("Expected cancellation error")
	}
}

func TestConcat(t *testing.T) {
	var a, b Series
	a.Append(Point{Procs: 1, Sim: 1, Files: 1})
	b.Append(Point{Procs: 2, Sim: 2, Files: 1})
	b.Append(Point{Procs: 1, Sim: 3, Files: 2})
	c := Concat("all", a, b)
	if c.Label != "all" || !reflect.DeepEqual(c.Procs, []int{1, 2, 1}) || !reflect.DeepEqual(c.Sim, []float64{1, 2, 3}) {
		t.Fatalf("Got %+v", c)
	}
}
