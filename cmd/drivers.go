/*
Copyright 2024 FreightDesk Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"

	"github.com/freightdesk/fuelmatch/model"
)

func driverCommands(f *fuelmatchInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drivers",
		Short: "driver management helpers",
	}

	cmd.AddCommand(driverSeedCommand(f))

	return cmd
}

// driverSeedCommand registers a handful of fake drivers, handy for
// trying the API against an empty database.
func driverSeedCommand(f *fuelmatchInstance) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "seed fake drivers for local development",
		Run: func(cmd *cobra.Command, args []string) {
			branches := []model.Branch{
				model.BranchMidwest,
				model.BranchSouth,
				model.BranchMountain,
				model.BranchWestCoast,
			}

			ctx := context.Background()
			for i := 0; i < count; i++ {
				driver := model.Driver{
					Name:         gofakeit.Name(),
					Branch:       branches[i%len(branches)],
					CardLastFour: gofakeit.DigitN(4),
					IsActive:     true,
				}
				created, err := f.fuelmatch.CreateDriver(ctx, driver)
				if err != nil {
					log.Printf("Error seeding driver: %v", err)
					continue
				}
				fmt.Printf("created driver %s (%s)\n", created.DriverID, created.Name)
			}
		},
	}

	cmd.Flags().IntVar(&count, "count", 10, "number of drivers to seed")

	return cmd
}
