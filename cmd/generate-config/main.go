// Command generate-config writes config.example.yaml with every default
// filled in. Pass "-" to print to stdout instead.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/folio/internal/config"
)

const header = "# Folio configuration example\n# Copy this file to config.yaml and customize as needed\n\n"

func render(cfg *config.Config) ([]byte, error) {
	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return append([]byte(header), yamlData...), nil
}

func main() {
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)

	output, err := render(config.Default())
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("Error generating YAML: "+err.Error()))
		os.Exit(1)
	}

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		os.Stdout.Write(output)
		return
	}
	if err := os.WriteFile(outputFile, output, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("Error writing file: "+err.Error()))
		os.Exit(1)
	}
	fmt.Println(okStyle.Render("Generated example config: " + outputFile))
}
