package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"platecalc/plate"
	"platecalc/qc"
	"platecalc/tagging"
)

// SourcePlate is a plate file: its wells, what they hold and the QC results
// measured on them. JSON files are read as well as YAML.
type SourcePlate struct {
	Barcode string       `yaml:"barcode"`
	UUID    string       `yaml:"uuid,omitempty"`
	Size    int          `yaml:"size,omitempty"`
	Rows    int          `yaml:"rows,omitempty"`
	Columns int          `yaml:"columns,omitempty"`
	Wells   []SourceWell `yaml:"wells"`
}

type SourceWell struct {
	Location  string      `yaml:"location"`
	Aliquots  int         `yaml:"aliquots"`
	Pool      int         `yaml:"pool,omitempty"`
	QCResults []qc.Result `yaml:"qc_results,omitempty"`
}

func LoadPlate(path string) (*SourcePlate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plate: %w", err)
	}
	p, err := ParsePlate(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func ParsePlate(data []byte) (*SourcePlate, error) {
	var p SourcePlate
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plate: %w", err)
	}
	g, err := p.Geometry()
	if err != nil {
		return nil, err
	}
	for i := range p.Wells {
		w := &p.Wells[i]
		w.Location = strings.ToUpper(strings.TrimSpace(w.Location))
		if !g.Contains(w.Location) {
			return nil, fmt.Errorf("%w: %q is not on a %s plate", plate.ErrInvalidWell, w.Location, g)
		}
		for j := range w.QCResults {
			if w.QCResults[j].WellLocation == "" {
				w.QCResults[j].WellLocation = w.Location
			}
		}
	}
	return &p, nil
}

// Geometry of the plate, 96 wells unless stated.
func (p *SourcePlate) Geometry() (plate.Geometry, error) {
	if p.Rows != 0 || p.Columns != 0 {
		return plate.NewGeometry(p.Rows, p.Columns)
	}
	if p.Size != 0 {
		return plate.ForSize(p.Size)
	}
	return plate.ForSize(96)
}

// Occupied lists the locations of wells holding at least one aliquot.
func (p *SourcePlate) Occupied() []string {
	var ret []string
	for _, w := range p.Wells {
		if w.Aliquots > 0 {
			ret = append(ret, w.Location)
		}
	}
	return ret
}

func (p *SourcePlate) QCResults() []qc.Result {
	var ret []qc.Result
	for _, w := range p.Wells {
		ret = append(ret, w.QCResults...)
	}
	return ret
}

func (p *SourcePlate) TaggingWells() []tagging.Well {
	ret := make([]tagging.Well, 0, len(p.Wells))
	for _, w := range p.Wells {
		ret = append(ret, tagging.Well{Position: w.Location, AliquotCount: w.Aliquots, PoolIndex: w.Pool})
	}
	return ret
}
