package cmd

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kdbwire",
	Short: "Encode, decode and inspect q ipc messages.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// glog refuses to log until the go flag set has been parsed
		_ = flag.CommandLine.Parse(nil)
	},
}

func Execute() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		glog.Flush()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.AddCommand(encodeCmd, decodeCmd, sizeCmd, headerCmd, typesCmd)
}

// readInput returns the contents of the file named by args[0], or stdin.
func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return ioutil.ReadAll(os.Stdin)
	}
	return ioutil.ReadFile(args[0])
}

// readJSON parses the input as a single JSON value. Objects become
// dictionaries and arrays lists.
func readJSON(args []string) (interface{}, error) {
	raw, err := readInput(args)
	if err != nil {
		return nil, err
	}
	var v interface{}
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&v); err != nil {
		return nil, errors.Wrap(err, "invalid JSON input")
	}
	return v, nil
}
