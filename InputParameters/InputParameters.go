package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type CouplingParameters struct {
	Title          string  `yaml:"Title"`
	Order          int     `yaml:"Order"`
	Alpha          float64 `yaml:"Alpha"`
	Beta           float64 `yaml:"Beta"`
	Gamma          float64 `yaml:"Gamma"`
	K2             float64 `yaml:"K2"` // wave number squared in the volume operator
	VertexTol      float64 `yaml:"VertexTol"`
	RelTol         float64 `yaml:"RelTol"`
	MaxIterations  int     `yaml:"MaxIterations"`
	RestartLen     int     `yaml:"RestartLen"`
	StrictDofMatch bool    `yaml:"StrictDofMatch"`
	PrintLevel     int     `yaml:"PrintLevel"`
}

// NewCouplingParameters returns the defaults used when no input file is
// given.
func NewCouplingParameters() *CouplingParameters {
	return &CouplingParameters{
		Title:          "DD coupling",
		Order:          1,
		Alpha:          1.0,
		Beta:           1.0,
		Gamma:          1.0,
		K2:             250.0,
		VertexTol:      1.0e-12,
		RelTol:         1.0e-12,
		MaxIterations:  1000,
		RestartLen:     30,
		StrictDofMatch: true,
		PrintLevel:     1,
	}
}

func (cp *CouplingParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, cp)
}

func (cp *CouplingParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", cp.Title)
	fmt.Printf("[%d]\t\t\t\t= Order\n", cp.Order)
	fmt.Printf("%8.5f\t\t= Alpha\n", cp.Alpha)
	fmt.Printf("%8.5f\t\t= Beta\n", cp.Beta)
	fmt.Printf("%8.5f\t\t= Gamma\n", cp.Gamma)
	fmt.Printf("%8.5f\t\t= K2\n", cp.K2)
	fmt.Printf("%8.1e\t\t= VertexTol\n", cp.VertexTol)
	fmt.Printf("%8.1e\t\t= RelTol\n", cp.RelTol)
	fmt.Printf("[%d]\t\t\t= MaxIterations\n", cp.MaxIterations)
	fmt.Printf("[%v]\t\t\t= StrictDofMatch\n", cp.StrictDofMatch)
}
