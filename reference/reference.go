// Reference measurements from other machines, to plot next to our own runs.

package reference

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed bluegene.yaml
var builtin []byte

// The dataset plotted by default.
const DefaultDataset = "s100"

type Dataset struct {
	Name  string    `yaml:"name"`
	Label string    `yaml:"label"`
	Procs []int     `yaml:"procs"`
	Sim   []float64 `yaml:"sim"`
}

type Collection struct {
	Datasets []Dataset `yaml:"datasets"`
}

func Builtin() (*Collection, error) {
	return Parse(builtin)
}

func ReadFile(filename string) (*Collection, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("In %s: %w", filename, err)
	}
	return c, nil
}

// Load the user's file if named, otherwise the built-in data.
func Load(filename string) (*Collection, error) {
	if filename == "" {
		return Builtin()
	}
	return ReadFile(filename)
}

func Parse(data []byte) (*Collection, error) {
	var c Collection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, d := range c.Datasets {
		if d.Name == "" {
			return nil, fmt.Errorf("Reference dataset without a name")
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("Duplicate reference dataset %s", d.Name)
		}
		seen[d.Name] = true
		if len(d.Procs) != len(d.Sim) {
			return nil, fmt.Errorf("Dataset %s: %d process counts but %d times", d.Name, len(d.Procs), len(d.Sim))
		}
	}
	return &c, nil
}

func (c *Collection) Lookup(name string) (*Dataset, bool) {
	for i := range c.Datasets {
		if c.Datasets[i].Name == name {
			return &c.Datasets[i], true
		}
	}
	return nil, false
}
