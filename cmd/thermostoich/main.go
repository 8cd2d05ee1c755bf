// ThermoStoich - thermodynamic stoichiometry of FT-ICR compound tables
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/ThermoStoich/cmd/thermostoich/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
