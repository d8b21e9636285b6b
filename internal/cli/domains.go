package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"disease-predictor/internal/domain"
)

func domainsCmd(flags *globalFlags) *cobra.Command {
	var withFeatures bool

	c := &cobra.Command{
		Use:   "domains",
		Short: "List the supported disease domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if !withFeatures {
				for _, d := range domain.All() {
					fmt.Fprintf(out, "%-12s %s\n", d.ID, d.Name)
				}
				return nil
			}

			s, err := flags.settings()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(s)
			if err != nil {
				return err
			}
			defer closeStore()

			reg := newPipeline(s, store, nil).Registry()
			for _, d := range domain.All() {
				spec, err := reg.Resolve(d.ID)
				if err != nil {
					fmt.Fprintf(out, "%-12s %s (unavailable: %v)\n", d.ID, d.Name, err)
					continue
				}
				fmt.Fprintf(out, "%-12s %s\n  %s\n", d.ID, d.Name, strings.Join(spec.FeatureNames(), ", "))
			}
			return nil
		},
	}

	c.Flags().BoolVar(&withFeatures, "features", false, "load artifacts and list each domain's feature order")
	return c
}
