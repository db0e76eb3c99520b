package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fekuna/omnipos-marketplace-service/internal/catalogload"
)

func printPlan(ctx context.Context, out io.Writer, loader *catalogload.Loader, plan *catalogload.Plan) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tCODE\tNAME\tPARENT\tACTION\tFORM FIELDS")
	for _, pc := range plan.Categories {
		action := "create"
		if pc.Existing != nil {
			action = "update"
		}
		fields := "-"
		if pc.SchemaOK {
			fields = fmt.Sprint(len(pc.Schema))
		}
		parent := pc.ParentCode
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(tw, "%s%d\t%s\t%s\t%s\t%s\t%s\n",
			strings.Repeat("  ", pc.Level), pc.Level, pc.Code, pc.Name, parent, action, fields)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	diffs, err := loader.Diffs(ctx, plan)
	if err != nil {
		return err
	}
	for _, d := range diffs {
		fmt.Fprintln(out)
		fmt.Fprint(out, d.Diff)
	}
	return nil
}
