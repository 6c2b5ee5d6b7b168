package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_profile_service/internal/bootstrap"
	"github.com/locvowork/employee_profile_service/internal/database"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "seeder",
		Short:         "Seed or clear employee profile data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newClearCmd())
	return cmd
}

func newSeedCmd() *cobra.Command {
	var (
		count   int
		preset  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create sample employees with generated avatars",
		RunE: func(cmd *cobra.Command, args []string) error {
			n := count
			if n <= 0 {
				n = database.GetPresetCount(database.SeedPreset(preset))
			}
			return withSeeder(cmd.Context(), func(s *database.DataSeeder) error {
				_, err := s.SeedData(cmd.Context(), n, workers)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "number of employees (overrides --preset)")
	cmd.Flags().StringVar(&preset, "preset", string(database.PresetSmall), "data preset: small, medium, large")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent creates")
	return cmd
}

func newClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirm(cmd, "⚠️  This will delete all employees! Continue? (yes/no): ") {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			return withSeeder(cmd.Context(), func(s *database.DataSeeder) error {
				_, err := s.ClearData(cmd.Context())
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")
	return cmd
}

func withSeeder(ctx context.Context, fn func(*database.DataSeeder) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()
	return fn(database.NewDataSeeder(app.Service))
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}
