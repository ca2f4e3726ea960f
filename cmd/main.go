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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/freightdesk/fuelmatch"
	"github.com/freightdesk/fuelmatch/config"
	"github.com/freightdesk/fuelmatch/database"
)

type CLI struct {
	cmd *cobra.Command
}

// fuelmatchInstance carries the initialized service and configuration
// into the subcommands.
type fuelmatchInstance struct {
	fuelmatch *fuelmatch.Fuelmatch
	cnf       *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

func preRun(app *fuelmatchInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("fuelmatch.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		svc, err := setupFuelmatch(cnf)
		if err != nil {
			log.Fatal(err)
		}

		app.fuelmatch = svc
		app.cnf = cnf

		return nil
	}
}

func setupFuelmatch(cfg *config.Configuration) (*fuelmatch.Fuelmatch, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	svc, err := fuelmatch.NewFuelmatch(db)
	if err != nil {
		return nil, fmt.Errorf("error creating fuelmatch: %v", err)
	}
	return svc, nil
}

func NewCLI() *CLI {
	var configFile string
	f := &fuelmatchInstance{}

	var rootCmd = &cobra.Command{
		Use:   "fuelmatch",
		Short: "Fuel transaction reconciliation for trucking back offices",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./fuelmatch.json", "Configuration file")

	rootCmd.PersistentPreRunE = preRun(f)

	rootCmd.AddCommand(serverCommands(f))
	rootCmd.AddCommand(migrateCommands(f))
	rootCmd.AddCommand(driverCommands(f))

	return &CLI{cmd: rootCmd}
}

func (w CLI) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
