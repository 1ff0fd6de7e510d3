// Package observe reads anchored records of observed generator outputs from
// YAML or JSON files. A file looks like
//
//	records:
//	  - name: player-1
//	    samples:
//	      - label: thwackability
//	        value: 0.7361482413112268
//	      - label: moxie
//	        value: null
//
// Samples are listed in the order the generator emitted them and the first one
// is the anchor. A missing or null value marks a sample that was not observed.
package observe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xsrecover/xsrecover"
	"github.com/xsrecover/xsrecover/recovery"
)

type file struct {
	Records []recordSpec `yaml:"records"`
}

type recordSpec struct {
	Name    string       `yaml:"name"`
	Samples []sampleSpec `yaml:"samples"`
}

type sampleSpec struct {
	Label string   `yaml:"label"`
	Value *float64 `yaml:"value"`
}

// Load reads the records in the file at path.
func Load(path string) ([]recovery.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return recs, nil
}

// Decode reads records from r.
func Decode(r io.Reader) ([]recovery.Record, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	seen := make(map[string]bool, len(f.Records))
	recs := make([]recovery.Record, 0, len(f.Records))
	for i, rs := range f.Records {
		if rs.Name == "" {
			return nil, fmt.Errorf("record %d has no name", i)
		}
		if seen[rs.Name] {
			return nil, fmt.Errorf("duplicate record name %q", rs.Name)
		}
		seen[rs.Name] = true

		if len(rs.Samples) == 0 || rs.Samples[0].Value == nil {
			return nil, fmt.Errorf("record %q does not start with a known anchor", rs.Name)
		}

		samples := make([]xsrecover.Sample, len(rs.Samples))
		for j, s := range rs.Samples {
			if s.Value == nil {
				samples[j] = xsrecover.Unknown(s.Label)
			} else {
				samples[j] = xsrecover.Known(*s.Value, s.Label)
			}
		}

		recs = append(recs, recovery.Record{Name: rs.Name, Samples: samples})
	}

	return recs, nil
}

// Labels builds a table from known values to "record/label" for printing.
// When a value occurs more than once the first occurrence wins.
func Labels(recs []recovery.Record) map[float64]string {
	labels := map[float64]string{}
	for _, rec := range recs {
		for _, s := range rec.Samples {
			if !s.Known || s.Label == "" {
				continue
			}
			if _, ok := labels[s.Value]; !ok {
				labels[s.Value] = rec.Name + "/" + s.Label
			}
		}
	}

	return labels
}
