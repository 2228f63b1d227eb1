package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cybertec-postgresql/dbal/internal/params"
	"github.com/cybertec-postgresql/dbal/internal/sqlparser"
)

// Parse prints the token stream of sql and, when platform is set, the
// statement rewritten into that platform's placeholder syntax together with
// the binding order.
func Parse(sql string, mysqlStringEscaping bool, platform string, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tTYPE\tTEXT")
	for _, tok := range sqlparser.NewScanner(sql, mysqlStringEscaping).ScanAll() {
		fmt.Fprintf(tw, "%d\t%s\t%q\n", tok.Pos, tok.Type, tok.Text)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if platform == "" {
		return nil
	}
	converter, ok := params.ConverterForPlatform(platform)
	if !ok {
		return fmt.Errorf("unknown platform: %s", platform)
	}
	converted, positions := params.Convert(sql, mysqlStringEscaping, converter)

	fmt.Fprintf(out, "\n%s: %s\n", platform, converted)
	if len(positions) == 0 {
		return nil
	}
	bindings := make([]string, len(positions))
	for i, b := range positions {
		if b.Name != "" {
			bindings[i] = ":" + b.Name
		} else {
			bindings[i] = fmt.Sprintf("#%d", b.Index+1)
		}
	}
	_, err := fmt.Fprintf(out, "bindings: %s\n", strings.Join(bindings, ", "))
	return err
}
