package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cybertec-postgresql/dbal/internal/driver"
)

// ListDrivers prints every registered driver with its platform properties
func ListDrivers(registry *driver.Registry, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DRIVER\tPLATFORM\tSAVEPOINTS\tBACKSLASH ESCAPES")
	for _, name := range registry.Drivers() {
		d, err := registry.Lookup(name)
		if err != nil {
			return err
		}
		p := d.Platform()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, p.Name, yesNo(p.SupportsSavepoints), yesNo(p.MySQLStringEscaping))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
