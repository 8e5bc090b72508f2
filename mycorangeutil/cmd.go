/*
Copyright © 2026 the MycoRange authors.
This file is part of MycoRange.

MycoRange is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

MycoRange is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with MycoRange.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package mycorangeutil holds the configuration and command layer for
// the mycorange command-line program.
package mycorangeutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/mycorange"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to MycoRange.
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
			name: "DataFile",
			usage: `
              DataFile is the path to the raster store file holding the
              presence/absence layers, the per-cell ground area layer, and
              the co-occurrence table. Can include environment variables.`,
			defaultVal: "mycorange_data.gob",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), overlapCmd.Flags(), shiftCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory where output tables and rasters are
              written. Can include environment variables.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), overlapCmd.Flags(), shiftCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of worker goroutines for the per-species
              computations. If it is less than 1, the number of available
              processors is used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), overlapCmd.Flags(), shiftCmd.Flags()},
		},
		{
			name: "MemCacheSize",
			usage: `
              MemCacheSize is the number of overlap grids to hold in the
              in-memory cache.`,
			defaultVal: 200,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), overlapCmd.Flags(), shiftCmd.Flags()},
		},
		{
			name: "CacheLoc",
			usage: `
              CacheLoc is a directory for caching overlap grids between runs.
              If it is empty, results are only cached in memory.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), overlapCmd.Flags(), shiftCmd.Flags()},
		},
		{
			name: "Trees",
			usage: `
              Trees restricts the overlap analysis to the listed tree species.
              If it is empty, every tree in the store is analyzed.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), overlapCmd.Flags()},
		},
		{
			name: "Fungi",
			usage: `
              Fungi restricts the shift analysis to the listed fungal species.
              If it is empty, every fungus in the store is analyzed.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), shiftCmd.Flags()},
		},
		{
			name: "Bands.Lower",
			usage: `
              Bands.Lower is the western edge of the longitudinal band
              partition [degrees].`,
			defaultVal: -170.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), shiftCmd.Flags()},
		},
		{
			name: "Bands.Upper",
			usage: `
              Bands.Upper is the eastern edge of the longitudinal band
              partition [degrees].`,
			defaultVal: -55.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), shiftCmd.Flags()},
		},
		{
			name: "Bands.Width",
			usage: `
              Bands.Width is the width of each longitude band [degrees].`,
			defaultVal: 3.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), shiftCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("MYCORANGE")

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
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
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
	Root.AddCommand(runCmd)
	Root.AddCommand(overlapCmd)
	Root.AddCommand(shiftCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("mycorange: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "mycorange",
	Short: "A tree-mycorrhizal range overlap and shift analyzer.",
	Long: `MycoRange estimates how the geographic overlap between tree species'
climatically suitable habitat and mycorrhizal fungal species' climatically
suitable habitat changes between a current and a future climate scenario,
and summarizes the direction of fungal range shifts with a
longitudinal-banding analysis.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format
'MYCORANGE_var' where 'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of MycoRange.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("MycoRange v%s\n", mycorange.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis.",
	Long: `run computes the overlap-area table and diversity rasters for every
tree in the store and then runs the longitudinal band shift analysis over
the fungal catalog.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := RunOverlap(Cfg); err != nil {
			return err
		}
		return RunShift(Cfg)
	},
	DisableAutoGenTag: true,
}

var overlapCmd = &cobra.Command{
	Use:   "overlap",
	Short: "Compute range overlaps and fungal diversity rasters.",
	Long: `overlap computes, for each tree species and climate scenario, the area
of range overlap with each co-occurring fungal species, the fungal
diversity raster over the tree's range, and the "left-behind" diversity
raster over the range the tree is predicted to vacate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunOverlap(Cfg)
	},
	DisableAutoGenTag: true,
}

var shiftCmd = &cobra.Command{
	Use:   "shift",
	Short: "Run the longitudinal band shift analysis.",
	Long: `shift slices the study extent into longitude bands, computes the
southern and northern boundary latitude of each fungal species in each
band under both scenarios, and classifies each species' mean boundary
movement into one of four shift regimes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunShift(Cfg)
	},
	DisableAutoGenTag: true,
}
