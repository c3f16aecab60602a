// Command benchrun runs the micro benchmarks in bench/ followed by perft and
// fixed-depth search throughput runs. It shells out to the go tool and must
// be started from the module root.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// run executes a command and prints its combined output. Returns exit code.
func run(name string, args ...string) int {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	fmt.Print(out.String())
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "error running %s: %v\n", name, err)
	return 1
}

type perftRun struct {
	label string
	fen   string
	depth int
}

var perftRuns = []perftRun{
	{"Initial", "", 3},
	{"Initial", "", 4},
	{"Initial", "", 5},
	{"Kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 3},
	{"Endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 5},
}

func main() {
	benchtime := flag.String("benchtime", "1s", "passed to go test -benchtime")
	searchDepth := flag.Int("search-depth", 5, "depth for the searchbench run (0 skips it)")
	flag.Parse()

	fmt.Println("Columns: BENCHMARK  N  ns/op  B/op  allocs/op")
	code := run("go", "test", "./bench", "-run", "^$", "-bench", ".", "-benchmem", "-benchtime="+*benchtime)
	if code != 0 {
		os.Exit(code)
	}

	fmt.Println("\nPerft Performance:")
	fmt.Println("TEST \t\tDepth \t\tNodes \t\tTime \tNPS")
	for _, p := range perftRuns {
		args := []string{"run", "./cmd/perft", "-depth", strconv.Itoa(p.depth), "-label", p.label}
		if p.fen != "" {
			args = append(args, "-fen", p.fen)
		}
		run("go", args...)
	}

	if *searchDepth > 0 {
		fmt.Println("\nSearch Performance:")
		run("go", "run", "./cmd/searchbench", "-depth", strconv.Itoa(*searchDepth))
	}
}
