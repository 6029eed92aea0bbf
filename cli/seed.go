package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"backendprojects/seed"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample clients and projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close(cmd.Context())

		res, err := seed.Run(cmd.Context(), s, seedForce, log)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d clients and %d projects\n", res.Clients, res.Projects)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "seed even when clients already exist")
}
