package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.senan.xyz/table/table"

	"go.roriz.xyz/retag/cmd/internal/retagflag"
	"go.roriz.xyz/retag/tags"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage:\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  $ %s <path>...\n\n", flag.CommandLine.Name())
		fmt.Fprintf(flag.CommandLine.Output(), "options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	defer retagflag.ExitError()
	retagflag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	for _, path := range flag.Args() {
		lines, err := tags.Dump(path)
		if err != nil {
			slog.Error("dump", "path", path, "err", err)
			continue
		}
		t := table.NewStringWriter()
		for _, line := range lines {
			fmt.Fprintln(t, line)
		}
		fmt.Println(path)
		for _, row := range strings.Split(strings.TrimRight(t.String(), "\n"), "\n") {
			fmt.Println("  " + row)
		}
	}
}
