// Copyright 2025 LazyUncle Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main provides catalogctl, an ops tool for seeding and
// querying the curated product catalog.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/your-org/lazyuncle/internal/catalog"
)

func main() {
	var dbPath string

	rootCmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Manage the LazyUncle product catalog",
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./catalog.db", "Path to the catalog database")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the starter catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := catalog.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			count, err := store.Seed(context.Background())
			if err != nil {
				return err
			}

			cmd.Printf("Seeded %d products into %s\n", count, dbPath)
			return nil
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search products within a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			budget, err := cmd.Flags().GetFloat64("budget")
			if err != nil {
				return err
			}

			store, err := catalog.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			products, err := store.Search(context.Background(), args[0], budget)
			if err != nil {
				return err
			}

			if len(products) == 0 {
				cmd.Println("No products found")
				return nil
			}

			for _, p := range products {
				cmd.Printf("%-20s %-35s $%6.2f  %s\n", p.ID, p.Name, p.Price, p.Category)
			}
			return nil
		},
	}
	searchCmd.Flags().Float64("budget", 50, "Maximum product price")

	countCmd := &cobra.Command{
		Use:   "count",
		Short: "Count products in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := catalog.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			count, err := store.Count(context.Background())
			if err != nil {
				return err
			}

			cmd.Printf("%d products\n", count)
			return nil
		},
	}

	rootCmd.AddCommand(seedCmd, searchCmd, countCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
