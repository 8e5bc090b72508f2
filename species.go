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

package mycorange

// SpeciesID is an opaque identifier for a tree or fungal species.
// All IDs are validated against the catalog held by the RasterStore, so
// a mistyped ID surfaces as a NotFoundError instead of silently
// producing an empty result.
type SpeciesID string

// Scenario selects a climate scenario. Presence layers are keyed by
// species and scenario; the two scenarios for a species are independent
// model outputs and are never interchangeable.
type Scenario string

// The two climate scenarios.
const (
	Current Scenario = "current"
	Future  Scenario = "future"
)

// Scenarios lists the climate scenarios in evaluation order.
var Scenarios = []Scenario{Current, Future}
