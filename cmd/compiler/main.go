package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"oolang.dev/compiler/pkg/compiler"

	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The oolang compiler lexes, parses, semantically analyzes and compiles a single
source file into moon assembly. Each phase selector runs that phase and every
phase before it, writing each phase's artifact files next to the source, and
stops early if an earlier phase reports a failure.
`, "\n", " ")

var Compiler = cli.New(Description).
	WithArg(cli.NewArg("phase", "One of lex, syn, sem, gen, exe").WithType(cli.TypeString)).
	WithArg(cli.NewArg("source", "The source file to compile").WithType(cli.TypeString)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 2 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	phaseArg, source := args[0], args[1]
	phase, ok := compiler.ParsePhase(phaseArg)
	if !ok {
		fmt.Printf("ERROR: Unknown phase %q, expected one of lex, syn, sem, gen, exe\n", phaseArg)
		return -1
	}

	src, err := os.ReadFile(source)
	if err != nil {
		fmt.Printf("ERROR: Unable to open input file: %s\n", err)
		return -1
	}

	runTarget := phase
	if phase == compiler.Exe {
		runTarget = compiler.Gen
	}
	result := compiler.Compile(src, runTarget)

	base := strings.TrimSuffix(source, filepath.Ext(source))
	for _, a := range result.Artifacts {
		if err := os.WriteFile(base+a.Suffix, []byte(a.Content), 0o644); err != nil {
			fmt.Printf("ERROR: Unable to write %s%s: %s\n", base, a.Suffix, err)
			return -1
		}
	}

	if !result.OK {
		fmt.Printf("ERROR: Unable to complete %q pass\n", runTarget)
		return -1
	}
	if phase != compiler.Exe {
		return 0
	}

	return runSimulator(base + ".moon")
}

// runSimulator invokes the external target simulator on the generated
// assembly, running the simulator binary named by the MOON
// environment variable (default './moon'), passing its stdout/stderr
// through untouched and propagating its exit code.
func runSimulator(moonFile string) int {
	bin := os.Getenv("MOON")
	if bin == "" {
		bin = "./moon"
	}

	cmd := exec.Command(bin, moonFile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		fmt.Printf("ERROR: Unable to run simulator: %s\n", err)
		return -1
	}
	return 0
}

func main() { os.Exit(Compiler.Run(os.Args, os.Stdout)) }
