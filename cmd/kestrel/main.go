// kestrel reads telemetry from a robot over a serial line and shows it in
// the terminal, or streams it headless as logs or JSON lines.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "headless":
		err = headlessCommand(os.Args[2:])
	case "list":
		err = listCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "control":
		err = controlCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `kestrel - serial telemetry viewer

Usage:
  kestrel <command> [flags]

Commands:
  run        Open the terminal view on the configured serial port
  headless   Stream telemetry as log records or JSON lines, no terminal view
  list       List the serial ports present on this machine
  validate   Load and validate a config file without opening the port
  stats      Poll the Prometheus metrics endpoint and print live counters
  control    Ask a running kestrel to attach or detach the serial port

Examples:
  kestrel run --port /dev/ttyACM0
  kestrel run --simulate
  kestrel headless --config ./kestrel.yaml --format json --output telemetry.jsonl
  kestrel validate --config ./kestrel.yaml
  kestrel stats --url http://localhost:9100/metrics --interval 1s
  kestrel control detach
`)
}
