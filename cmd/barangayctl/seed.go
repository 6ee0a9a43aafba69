package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/EmpoweredVote/barangay-admin/internal/seeds"
	"github.com/EmpoweredVote/barangay-admin/internal/server"
	"github.com/spf13/cobra"
)

func init() {
	var file string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create users and residents from a YAML seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd.Context(), func(st *server.Stores) error {
				return runSeed(cmd.Context(), st, file, os.Stdout)
			})
		},
	}
	seedCmd.Flags().StringVarP(&file, "file", "f", "seeds/barangay.yaml", "Seed file")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context, st *server.Stores, path string, out io.Writer) error {
	f, err := seeds.Load(path)
	if err != nil {
		return err
	}
	res, err := seeds.Apply(ctx, f, st.Users, st.Residents)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "users: %d created, %d skipped\nresidents: %d created, %d skipped\n",
		res.UsersCreated, res.UsersSkipped, res.ResidentsCreated, res.ResidentsSkipped)
	return nil
}
