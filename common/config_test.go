package common

import (
	"os"
	"path"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestApplyConfigFile(t *testing.T) {
	cfg := DefaultConfig()
	input := `
# comment
[generate]
threads-per-node=4
dialect=slurm
nodes=1,2, 4
sim-time=250.5

[aggregate]
trials=3
data-dir=/scratch/runs

[plot]
formats=png, svg
y-ticks=10,20

[notify]
kafka-broker=broker.example.org:9092
`
	if err := ApplyConfigFile(cfg, strings.NewReader(input)); err != nil {
		t.Fatal(err)
	}
	if cfg.Generate.ThreadsPerNode != 4 || cfg.Generate.Dialect != DialectSlurm {
		t.Fatalf("Generate %+v", cfg.Generate)
	}
	if !reflect.DeepEqual(cfg.Generate.Nodes, []int{1, 2, 4}) {
		t.Fatalf("Nodes %v", cfg.Generate.Nodes)
	}
	if cfg.Generate.SimTimeMs != 250.5 {
		t.Fatalf("SimTime %v", cfg.Generate.SimTimeMs)
	}
	if cfg.Aggregate.Trials != 3 || cfg.Aggregate.DataDir != "/scratch/runs" {
		t.Fatalf("Aggregate %+v", cfg.Aggregate)
	}
	if !reflect.DeepEqual(cfg.Plot.Formats, []string{"png", "svg"}) {
		t.Fatalf("Formats %v", cfg.Plot.Formats)
	}
	if !reflect.DeepEqual(cfg.Plot.YTicks, []float64{10, 20}) {
		t.Fatalf("YTicks %v", cfg.Plot.YTicks)
	}
	if cfg.Notify.KafkaBroker != "broker.example.org:9092" {
		t.Fatalf("Broker %q", cfg.Notify.KafkaBroker)
	}
	// Untouched
	if cfg.Generate.ScaleDivisor != 11250 || cfg.Aggregate.LegacyStem != "runtimes_" {
		t.Fatalf("Defaults were clobbered")
	}
}

func TestApplyConfigFileBadValues(t *testing.T) {
	cfg := DefaultConfig()
	input := "[generate]\nthreads-per-node=eight\nnodes=1,x\n"
	err := ApplyConfigFile(cfg, strings.NewReader(input))
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "eight") || !strings.Contains(err.Error(), "1,x") {
		t.Fatalf("Both errors should be reported: %v", err)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatal("Expected defaults")
	}
	if _, err := LoadConfig(path.Join(t.TempDir(), "nope.ini")); err == nil {
		t.Fatal("Explicit missing file should fail")
	}
}

func TestLoadConfigHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NEST_HOME", "/opt/nest")
	err := os.WriteFile(
		path.Join(home, DefaultConfigName),
		[]byte("[generate]\ninstall-path=$NEST_HOME/bin\n"),
		0600,
	)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generate.InstallPath != "/opt/nest/bin" {
		t.Fatalf("Got %s", cfg.Generate.InstallPath)
	}
}

func TestValidateReportsAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generate.Dialect = "lsf"
	cfg.Aggregate.Trials = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "lsf") || !strings.Contains(err.Error(), "trials") {
		t.Fatalf("Got %v", err)
	}
}

func TestElapseRange(t *testing.T) {
	g := DefaultConfig().Generate
	for _, m := range []int{MinPJMElapseMinutes, MaxPJMElapseMinutes} {
		g.ElapseMinutes = m
		if err := g.Validate(); err != nil {
			t.Fatalf("%d: %v", m, err)
		}
	}
	for _, m := range []int{0, 5, 61} {
		g.ElapseMinutes = m
		if err := g.Validate(); err == nil || !strings.Contains(err.Error(), "elapse-minutes") {
			t.Fatalf("%d: got %v", m, err)
		}
	}
	g.Dialect = DialectSlurm
	g.ElapseMinutes = 240
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestSectionsValidateSeparately(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generate.Dialect = "lsf"
	if err := cfg.Aggregate.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Plot.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Generate.Validate(); err == nil {
		t.Fatal("Expected error")
	}
}

func TestProcs(t *testing.T) {
	ac := DefaultConfig().Aggregate
	if !reflect.DeepEqual(ac.Procs(), []int{2048, 4096, 8192, 10000, 12288}) {
		t.Fatalf("Got %v", ac.Procs())
	}
}
