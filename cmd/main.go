// Package main is the travelcost command: the HTTP API, the MCP stdio server
// and a CLI over the same price table.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

// Version is set at build time via ldflags.
var Version = "v0.1.0"

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitInfeasible = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches to a subcommand and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return runServeCommand(args, stdout, stderr)
	case "mcp":
		return runMCPCommand(args, stdin, stdout, stderr)
	case "quote":
		return runQuoteCommand(args, stdout, stderr)
	case "compare":
		return runCompareCommand(args, stdout, stderr)
	case "info":
		return runInfoCommand(args, stdout, stderr)
	case "destinations":
		return runDestinationsCommand(args, stdout, stderr)
	case "check":
		return runCheckCommand(args, stdout, stderr)
	case "export-sqlite":
		return runExportCommand(args, stdout, stderr)
	case "version", "-v", "--version":
		printVersion(stdout)
		return exitOK
	case "help", "-h", "--help":
		printHelp(stdout)
		return exitOK
	default:
		newPrinter(stderr).errorf("unknown command: %s", cmd)
		printHelp(stderr)
		return exitError
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "travelcost %s\n", Version)
	fmt.Fprintf(w, "Runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Travel cost estimates and budget plans")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: travelcost [COMMAND] [OPTIONS]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve                      Run the HTTP API and MCP endpoints (default)")
	fmt.Fprintln(w, "  mcp                        Run the MCP server on stdin/stdout")
	fmt.Fprintln(w, "  quote DEST DAYS            Estimate a trip, or plan one with --budget")
	fmt.Fprintln(w, "  compare DAYS DEST...       Rank destinations by total cost")
	fmt.Fprintln(w, "  info DEST                  Show every price of a destination")
	fmt.Fprintln(w, "  destinations               List supported destinations")
	fmt.Fprintln(w, "  check                      Check that a server is reachable")
	fmt.Fprintln(w, "  export-sqlite FILE         Write the price table to a SQLite database")
	fmt.Fprintln(w, "  version                    Show version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common options:")
	fmt.Fprintln(w, "  -c, --config FILE          Config file (default: $TRAVELCOST_CONFIG)")
	fmt.Fprintln(w, "  -u, --url URL              Query a running server instead of the local table")
	fmt.Fprintln(w, "  --json                     Print the structured result")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Quote options:")
	fmt.Fprintln(w, "  -l, --level TIER           budget, mid or luxury")
	fmt.Fprintln(w, "  -t, --travelers N          Number of travelers (default: 1)")
	fmt.Fprintln(w, "  -a, --lodging TYPE         hotel, guesthouse, resort or pension")
	fmt.Fprintln(w, "  -b, --budget UNITS         Total budget in budget units (10,000 KRW each)")
	fmt.Fprintln(w, "  -s, --spending POLICY      lean, balanced or max")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve options:")
	fmt.Fprintln(w, "  -p, --port PORT            Listen port (default: 3000)")
	fmt.Fprintln(w, "  -d, --debug                Enable debug logging")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  travelcost quote Japan 3 -l mid -t 2")
	fmt.Fprintln(w, "  travelcost quote 일본 5 -b 200 -s balanced")
	fmt.Fprintln(w, "  travelcost compare 7 Spain Thailand Vietnam -l luxury")
	fmt.Fprintln(w, "  travelcost info France --url http://localhost:3000")
}
