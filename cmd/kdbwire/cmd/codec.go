package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	kdb "github.com/sv/kdbwire"
)

const (
	flagCompress = "compress"
	flagMsgType  = "msg-type"
	flagOut      = "out"
	flagRawNanos = "raw-nanos"
)

var msgTypes = map[string]int{
	"async":    kdb.ASYNC,
	"sync":     kdb.SYNC,
	"response": kdb.RESPONSE,
}

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encodes a JSON value read from file or stdin as a q ipc message.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := readJSON(args)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString(flagMsgType)
		msgtype, ok := msgTypes[name]
		if !ok {
			return errors.Errorf("unknown message type %q", name)
		}
		compress, _ := cmd.Flags().GetBool(flagCompress)
		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString(flagOut); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return kdb.WriteMessage(out, msgtype, v, compress)
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decodes a q ipc message read from file or stdin and prints it.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(args)
		if err != nil {
			return err
		}
		var opts []kdb.DecodeOption
		if rawNanos, _ := cmd.Flags().GetBool(flagRawNanos); rawNanos {
			opts = append(opts, kdb.RawNanos())
		}
		v, _, err := kdb.ReadMessage(bufio.NewReader(bytes.NewReader(raw)), opts...)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var sizeCmd = &cobra.Command{
	Use:   "size [file]",
	Short: "Prints the exact encoded size of a JSON value, header included.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := readJSON(args)
		if err != nil {
			return err
		}
		n, err := kdb.Size(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n+8)
		return nil
	},
}

func init() {
	encodeCmd.Flags().Bool(flagCompress, false, "Apply q ipc compression when it pays off.")
	encodeCmd.Flags().String(flagMsgType, "async", "Message type: async, sync or response.")
	encodeCmd.Flags().StringP(flagOut, "o", "", "Write the message to this file instead of stdout.")
	decodeCmd.Flags().Bool(flagRawNanos, false, "Print timestamps and timespans as nanosecond counts.")
}
