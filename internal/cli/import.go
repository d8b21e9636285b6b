package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"disease-predictor/internal/storage"
)

func importCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Copy artifacts from a directory into the Bolt database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.settings()
			if err != nil {
				return err
			}

			store, err := storage.New(s.BoltPath)
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.ImportDir(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			fmt.Fprintf(out, "imported %d artifacts into %s\n", len(names), s.BoltPath)
			return nil
		},
	}
}
