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

package mycorangeutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/mycorange"
	"github.com/spf13/cast"
)

// GetStringSlice returns a string-slice configuration variable,
// accepting either a native slice or a comma-separated string.
func GetStringSlice(varName string, cfg *viper.Viper) []string {
	i := cfg.Get(varName)
	if i == nil {
		return nil
	}
	if s, ok := i.(string); ok {
		s = strings.Trim(s, "[] ")
		if s == "" {
			return nil
		}
		return strings.Split(s, ",")
	}
	return cast.ToStringSlice(i)
}

// speciesList converts a configuration variable to species IDs, falling
// back to the given catalog when the variable is empty.
func speciesList(varName string, cfg *viper.Viper, catalog []mycorange.SpeciesID) []mycorange.SpeciesID {
	s := GetStringSlice(varName, cfg)
	if len(s) == 0 {
		return catalog
	}
	ids := make([]mycorange.SpeciesID, len(s))
	for i, v := range s {
		ids[i] = mycorange.SpeciesID(strings.TrimSpace(v))
	}
	return ids
}

// checkOutputDir expands any environment variables in d and makes sure
// that it exists.
func checkOutputDir(d string) (string, error) {
	d = os.ExpandEnv(d)
	if d == "" {
		d = "."
	}
	if err := os.MkdirAll(d, os.ModePerm); err != nil {
		return d, fmt.Errorf("mycorange: problem creating output directory: %v", err)
	}
	return d, nil
}

// loadStore reads the raster store from the configured data file.
func loadStore(cfg *viper.Viper) (*mycorange.RasterStore, error) {
	path := os.ExpandEnv(cfg.GetString("DataFile"))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mycorange: problem opening data file: %v", err)
	}
	defer f.Close()
	return mycorange.LoadRasterStore(f)
}
