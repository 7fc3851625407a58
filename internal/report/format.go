package report

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
)

var cellReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func formatValue(v interface{}) string {
	if v == nil {
		return Missing
	}
	return cellReplacer.Replace(fmt.Sprint(v))
}

func writeRow(tw *tabwriter.Writer, cells []string) {
	fmt.Fprintln(tw, strings.Join(cells, "\t"))
}

// displayName turns a table name into prose: savings_accounts -> savings accounts.
func displayName(table string) string {
	return strings.ReplaceAll(table, "_", " ")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
