package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/asda-lang/asdar/driver"
	"github.com/asda-lang/asdar/internal/obslog"
)

func main() {
	var (
		debug       = flag.Bool("debug", false, "trace every opcode to stderr")
		interactive = flag.Bool("i", false, "step through execution in an interactive debugger")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: asdar [-debug] [-i] <bytecode-file>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	if *debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "asdar: building debug logger: %v\n", err)
			os.Exit(1)
		}
		defer l.Sync()
		obslog.SetLogger(l)
	}

	if *interactive {
		if err := runInteractive(path, *debug); err != nil {
			fmt.Fprintf(os.Stderr, "asdar: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := driver.Run(path, driver.Options{Debug: *debug}); err != nil {
		fmt.Fprintf(os.Stderr, "asdar: %v\n", err)
		os.Exit(1)
	}
}
