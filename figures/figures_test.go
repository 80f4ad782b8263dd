package figures

import (
	"context"
	"flag"
	"os"
	"path"
	"strings"
	"testing"

	. "stdpbench/common"
	"stdpbench/filesys"
	"stdpbench/status"
)

func init() {
	Log.SetLevel(status.LogLevelCritical)
}

func TestPlot(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir, err := filesys.PopulateTestData(
		"figures",
		filesys.TestFile{Dir: "sim_openmp_N2048", Name: "runtimes_0.dat", Data: []byte("0 0 98\n1 0 75.8\n")},
		filesys.TestFile{Dir: "sim_openmp_N4096", Name: "runtimes_0.dat", Data: []byte("0 0 99\n1 0 49.2\n")},
		filesys.TestFile{Dir: "sim_flatmpi_N2048", Name: "runtimes_0.dat", Data: []byte("0 0 97\n1 0 77.9\n")},
	)
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	out := path.Join(dir, "figs")

	pc := new(PlotCommand)
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	pc.Add(fs)
	err = fs.Parse([]string{"-data-dir", dir, "-nodes", "256,512", "-trials", "1", "-output-dir", out, "-formats", "pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if err := pc.Validate(); err != nil {
		t.Fatal(err)
	}
	var stdout strings.Builder
	if err := pc.Perform(context.Background(), &stdout); err != nil {
		t.Fatal(err)
	}
	files := strings.Fields(stdout.String())
	if len(files) != 3 {
		t.Fatalf("Files %v", files)
	}
	for _, stem := range []string{"sim_K_stdp_bm", "setup_K_stdp_bm", "gain_K_stdp_bm"} {
		if _, err := os.Stat(path.Join(out, stem+".pdf")); err != nil {
			t.Fatal(err)
		}
	}
}
