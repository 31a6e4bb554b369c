package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/opencode-ai/lorasched/internal/schedule"
)

const tablePadding = 2

func writeTable(out io.Writer, headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(out, 0, 0, tablePadding, ' ', tabwriter.StripEscape)
	if len(headers) > 0 {
		fmt.Fprintln(writer, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(writer, strings.Join(row, "\t"))
	}
	return writer.Flush()
}

func formatYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatStrength(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

func formatRunLength(seg schedule.Segment) string {
	if seg.IsRemainder() {
		return "*"
	}
	return strconv.Itoa(*seg.RunLength)
}
