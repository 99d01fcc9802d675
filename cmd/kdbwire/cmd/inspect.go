package cmd

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	kdb "github.com/sv/kdbwire"
)

var msgTypeNames = []string{"async", "sync", "response"}

var headerCmd = &cobra.Command{
	Use:   "header [file]",
	Short: "Shows the header of a q ipc message.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(args)
		if err != nil {
			return err
		}
		h, err := kdb.ParseHeader(raw)
		if err != nil {
			return err
		}
		msgtype := strconv.Itoa(h.MsgType)
		if h.MsgType < len(msgTypeNames) {
			msgtype = msgTypeNames[h.MsgType]
		}
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Append([]string{"Message Type", msgtype})
		table.Append([]string{"Compressed", strconv.FormatBool(h.Compressed)})
		table.Append([]string{"Size", strconv.Itoa(h.Size)})
		table.Append([]string{"Bytes Read", strconv.Itoa(len(raw))})
		table.Render()
		return nil
	},
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Lists the scalar types with their codes and widths.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Name", "Code", "Width"})
		for _, t := range kdb.ScalarTypes() {
			code, err := kdb.Code(t)
			if err != nil {
				return err
			}
			w, err := kdb.Width(t)
			if err != nil {
				return err
			}
			width := strconv.Itoa(w)
			if w == kdb.VariableWidth {
				width = "variable"
			}
			table.Append([]string{t.String(), strconv.Itoa(int(code)), width})
		}
		table.Render()
		return nil
	},
}
