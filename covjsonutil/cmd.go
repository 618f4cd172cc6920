/*
Copyright © 2019 the CovJSON converter authors.
This file is part of the CovJSON converter.

The CovJSON converter is free software: you can redistribute it and/or
modify it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

The CovJSON converter is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with the CovJSON converter.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package covjsonutil holds the command-line interface for the CovJSON
// converter.
package covjsonutil

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spatialmodel/covjson"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the converter.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the path to the NetCDF file to be converted.
              Can include environment variables.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the destination for the CovJSON document(s).
              It may be a plain path or a blob storage locator in the
              format 'provider://name/path' where the accepted providers
              are 'file', 'gs', and 's3'. In tiled mode, tile sub-documents
              are written next to it. Can include environment variables.`,
			shorthand:  "o",
			defaultVal: "coverage.covjson",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "Variables",
			usage: `
              Variables lists the data variables to convert. All listed
              variables must have the same dimensions.`,
			shorthand:  "v",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "TileShape",
			usage: `
              TileShape specifies the per-dimension tile extents for tiled
              output, in the order of the variable's dimensions. If empty,
              a single untiled document is produced.`,
			shorthand:  "s",
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel sets the logging verbosity: debug, info, warn, or
              error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("COVJSON")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(convertCmd)
	Root.AddCommand(describeCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and configures logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("covjson: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("covjson: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "covjson",
	Short: "A NetCDF to CovJSON converter.",
	Long: `covjson converts gridded array data from NetCDF files into
CoverageJSON documents, either as a single self-contained document or
partitioned into tiles.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'COVJSON_var'
where 'var' is the name of the variable to be set. Many configuration
variables are additionally allowed to contain environment variables within
them. Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of the converter.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("covjson v%s\n", covjson.Version)
	},
	DisableAutoGenTag: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a NetCDF file to CovJSON.",
	Long: `convert extracts the selected variables from the input file and
writes them as a CovJSON document to the output destination. If a tile
shape is given and it produces more than one tile, the output is a root
collection document plus one sub-document per tile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Convert(
			os.ExpandEnv(Cfg.GetString("InputFile")),
			os.ExpandEnv(Cfg.GetString("OutputFile")),
			expandStringSlice(Cfg.GetStringSlice("Variables")),
			Cfg.GetIntSlice("TileShape"),
		)
	},
	DisableAutoGenTag: true,
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Summarize the contents of a NetCDF file.",
	Long: `describe prints the dimensions, variables, and axis metadata of
the input file, to help choose variables and tile shapes for conversion.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Describe(cmd.OutOrStdout(), os.ExpandEnv(Cfg.GetString("InputFile")))
	},
	DisableAutoGenTag: true,
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}
