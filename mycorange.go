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

// Package mycorange estimates how the geographic overlap between tree
// species' climatically suitable habitat and mycorrhizal fungal species'
// climatically suitable habitat changes between a current and a future
// climate scenario, and summarizes the direction and magnitude of fungal
// range shifts using a longitudinal-banding analysis.
//
// Binary presence/absence rasters from an external species distribution
// modeling pipeline are the inputs; tables of overlap areas, fungal
// diversity rasters, per-band range-boundary shifts, and qualitative
// shift classifications are the outputs.
package mycorange

// Version gives the version number of this version of MycoRange.
const Version = "0.1.0"
