package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

// newLineScanner creates a line scanner from a reader.
func newLineScanner(r io.Reader) *bufio.Scanner {
	return bufio.NewScanner(r)
}

// newTable creates a table writer mirrored to stdout.
func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	return tw
}

// hyper formats an amount in HYPER for display.
func hyper(v float64) string {
	return fmt.Sprintf("%.2f HYPER", v)
}
