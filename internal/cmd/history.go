package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/offlinefirst/screenshotter/pkg/screenshots"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent screenshots in the save path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.appContext()
			if err != nil {
				return err
			}
			dir := app.Store.Current().ResolvedSavePath()
			captures, err := screenshots.ListCaptures(dir, limit)
			if err != nil {
				return err
			}
			if len(captures) == 0 {
				_, err := fmt.Fprintf(opts.stdout, "No screenshots in %s\n", dir)
				return err
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "Name", "Taken", "Age", "Size"})
			var total uint64
			for i, c := range captures {
				size := uint64(max(c.Size, 0))
				total += size
				t.AppendRow(table.Row{
					i + 1,
					c.Name,
					c.TakenAt.Format("2006-01-02 15:04:05"),
					humanize.Time(c.TakenAt),
					humanize.Bytes(size),
				})
			}
			t.AppendFooter(table.Row{"", fmt.Sprintf("%d shown", len(captures)), "", "", humanize.Bytes(total)})
			_, err = fmt.Fprintln(opts.stdout, t.Render())
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of screenshots to list (0 for all)")
	return cmd
}
