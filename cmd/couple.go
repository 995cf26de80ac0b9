/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"math/rand"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/biswajitcsecu/mfem/InputParameters"
	"github.com/biswajitcsecu/mfem/ddcouple"
	"github.com/biswajitcsecu/mfem/fespace"
	"github.com/biswajitcsecu/mfem/mesh"
	"github.com/biswajitcsecu/mfem/solvers"
)

type ModelCouple struct {
	ParamsFile string
	NX, NY, NZ int
	Profile    bool
}

// CoupleCmd represents the couple command
var CoupleCmd = &cobra.Command{
	Use:   "couple",
	Short: "Two-subdomain coupling demo on a split box mesh",
	Long: `Splits a hexahedral box mesh into two subdomains at its midplane,
builds the full interface coupling operator and runs an outer GMRES solve
against a manufactured right-hand side, reporting block sizes and solver
outcomes.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		mc := &ModelCouple{}
		if mc.ParamsFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		mc.NX, _ = cmd.Flags().GetInt("nx")
		mc.NY, _ = cmd.Flags().GetInt("ny")
		mc.NZ, _ = cmd.Flags().GetInt("nz")
		mc.Profile, _ = cmd.Flags().GetBool("profile")
		cp := processCoupleInput(mc)
		RunCouple(mc, cp)
	},
}

func processCoupleInput(mc *ModelCouple) (cp *InputParameters.CouplingParameters) {
	cp = InputParameters.NewCouplingParameters()
	if len(mc.ParamsFile) == 0 {
		return
	}
	data, err := ioutil.ReadFile(mc.ParamsFile)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Two Box Coupling"
Order: 1
Alpha: 1.
Beta: 1.
Gamma: 1.
K2: 250.
RelTol: 1.e-12
MaxIterations: 1000
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	if err = cp.Parse(data); err != nil {
		panic(err)
	}
	return
}

func init() {
	rootCmd.AddCommand(CoupleCmd)
	CoupleCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for coupling parameters like:\n\t- Alpha\n\t- K2")
	CoupleCmd.Flags().Int("nx", 4, "box elements in x; split into subdomains at nx/2")
	CoupleCmd.Flags().Int("ny", 2, "box elements in y")
	CoupleCmd.Flags().Int("nz", 2, "box elements in z")
	CoupleCmd.Flags().Bool("profile", false, "write a CPU profile of the operator construction")
}

func RunCouple(mc *ModelCouple, cp *InputParameters.CouplingParameters) {
	if mc.Profile {
		defer profile.Start().Stop()
	}
	cp.Print()

	pm, err := mesh.NewCartesianHex(mc.NX, mc.NY, mc.NZ, 0, float64(mc.NX), 0, float64(mc.NY), 0, float64(mc.NZ))
	if err != nil {
		panic(err)
	}
	mid := float64(mc.NX) / 2
	pm.SetAttributesBy(func(c [3]float64) int {
		if c[0] < mid {
			return 1
		}
		return 2
	})

	op, err := ddcouple.NewDDInterfaceOperator(pm, []int{1, 2}, fespace.LumpedAssembler{}, cp)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	fmt.Printf("global trace space: %d DOFs in %d subdomain blocks, %d interfaces\n",
		op.Height(), len(op.SDs), len(op.IFs))
	for m, sd := range op.SDs {
		fmt.Printf("subdomain %d: %d elements, %d true DOFs, %d surface DOFs\n",
			m, sd.Mesh.NumElements(), sd.ND.TrueVSize(), sd.BdrySize())
	}

	// Outer solve against a manufactured right-hand side.
	var (
		b = make([]float64, op.Width())
		x = make([]float64, op.Width())
	)
	rnd := rand.New(rand.NewSource(1))
	for i := range b {
		b[i] = rnd.Float64()
	}
	g := solvers.NewGMRES(op, nil, cp.RelTol, cp.MaxIterations, cp.RestartLen)
	g.PrintLevel = cp.PrintLevel
	g.Mult(b, x)
	for m := range op.SDs {
		st := op.LocalStats(m)
		fmt.Printf("subdomain %d last local solve: %d iterations, residual %.6e, converged %v\n",
			m, st.Iterations, st.ResidualNorm, st.Converged)
	}
}
