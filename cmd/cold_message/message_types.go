package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/cold-message-generator/internal/types"
)

var messageTypesCmd = &cobra.Command{
	Use:   "message-types",
	Short: "List the supported message types",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listMessageTypes(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(messageTypesCmd)
}

func listMessageTypes(w io.Writer) error {
	for _, mt := range types.MessageTypes {
		kind := "linkedin"
		if mt.IsEmail() {
			kind = "email"
		}
		if _, err := fmt.Fprintf(w, "%-8s  %s\n", kind, mt); err != nil {
			return err
		}
	}
	return nil
}
