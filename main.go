package main

import "github.com/biswajitcsecu/mfem/cmd"

func main() {
	cmd.Execute()
}
