// Package style resolves the DSL's unit constants (dt, sw, dl, bp) and the
// zoom-to-detail-level mapping the scene assembler consults. The raw
// numbers come from config.toml's [style] table (see internal/conf); this
// package turns them into the per-detail-level lookup the path store needs
// when resolving symbolic positions.
package style

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
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

import "fmt"

// MaxDetail is the highest detail level a feature can declare.
const MaxDetail = 4

// Table holds the resolved unit constants and the zoom->detail mapping for
// one loaded Atlas. It is immutable after construction and safe to share
// across concurrent renders.
type Table struct {
	// dt, sw, dl are indexed by detail level 1..MaxDetail; index 0 unused.
	dt, sw, dl [MaxDetail + 1]float64
	// bp is the meters-on-the-ground per typographic point
	// (PointMeters), independent of detail level; it is a fixed ratio
	// from the style table, not zoom-dependent.
	bp float64
	// zoomDetail[z] gives the detail level in effect at zoom z, for
	// z in [0, MaxZoom].
	zoomDetail [MaxZoom + 1]int
}

// MaxZoom is the highest zoom level tiles are served for.
const MaxZoom = 17

// BuildParams is the raw per-detail-level constants read from config.toml.
type BuildParams struct {
	// DoubleTrackMeters, SwitchLengthMeters, DetailUnitMeters are each
	// either a single value (applied at every detail level) or a slice
	// of exactly MaxDetail values, one per detail level.
	DoubleTrackMeters  []float64
	SwitchLengthMeters []float64
	DetailUnitMeters   []float64
	PointMeters        float64
	// ZoomThresholds[i] is the minimum zoom at which detail level i+1
	// becomes active; must have exactly MaxDetail-1 ascending entries.
	ZoomThresholds []int
}

// New builds a Table from BuildParams. An empty slice is an error; the
// baseline constants used by the sample corpus are supplied upstream by
// conf's setDefaults, not here.
func New(p BuildParams) (*Table, error) {
	t := &Table{bp: p.PointMeters}
	if err := fill(&t.dt, p.DoubleTrackMeters); err != nil {
		return nil, fmt.Errorf("style: dt: %w", err)
	}
	if err := fill(&t.sw, p.SwitchLengthMeters); err != nil {
		return nil, fmt.Errorf("style: sw: %w", err)
	}
	if err := fill(&t.dl, p.DetailUnitMeters); err != nil {
		return nil, fmt.Errorf("style: dl: %w", err)
	}
	if err := fillZoom(&t.zoomDetail, p.ZoomThresholds); err != nil {
		return nil, fmt.Errorf("style: zoom thresholds: %w", err)
	}
	return t, nil
}

func fill(dst *[MaxDetail + 1]float64, values []float64) error {
	switch len(values) {
	case 0:
		return fmt.Errorf("no values given")
	case 1:
		for d := 1; d <= MaxDetail; d++ {
			dst[d] = values[0]
		}
	case MaxDetail:
		for d := 1; d <= MaxDetail; d++ {
			dst[d] = values[d-1]
		}
	default:
		return fmt.Errorf("expected 1 or %d values, got %d", MaxDetail, len(values))
	}
	return nil
}

func fillZoom(dst *[MaxZoom + 1]int, thresholds []int) error {
	if len(thresholds) != MaxDetail-1 {
		return fmt.Errorf("expected %d thresholds, got %d", MaxDetail-1, len(thresholds))
	}
	for z := 0; z <= MaxZoom; z++ {
		detail := 1
		for _, th := range thresholds {
			if z >= th {
				detail++
			}
		}
		dst[z] = detail
	}
	return nil
}

// DetailForZoom maps a zoom level to the detail level in effect there.
// Zoom values outside [0,MaxZoom] are clamped.
func (t *Table) DetailForZoom(z int) int {
	if z < 0 {
		z = 0
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	return t.zoomDetail[z]
}

// Unit is one of the symbolic-position units: bp, km, dt, sw, dl.
type Unit string

const (
	UnitBP Unit = "bp"
	UnitKM Unit = "km"
	UnitDT Unit = "dt"
	UnitSW Unit = "sw"
	UnitDL Unit = "dl"
)

// Meters converts a quantity in the given unit to meters of curve arc
// length, at the given detail level. km is always 1000m of arc
// length, not corrected for latitude: section distances are consumed as
// curve arc length, not ground distance.
func (t *Table) Meters(u Unit, amount float64, detail int) (float64, error) {
	if detail < 1 || detail > MaxDetail {
		return 0, fmt.Errorf("style: detail level %d out of range", detail)
	}
	switch u {
	case UnitKM:
		return amount * 1000, nil
	case UnitDT:
		return amount * t.dt[detail], nil
	case UnitSW:
		return amount * t.sw[detail], nil
	case UnitDL:
		return amount * t.dl[detail], nil
	case UnitBP:
		return amount * t.bp, nil
	default:
		return 0, fmt.Errorf("style: unknown unit %q", u)
	}
}

// DoubleTrackSpacing returns the dt constant itself (meters) at the given
// detail level, used by the renderer to draw parallel :double tracks at
// +-0.5*dt.
func (t *Table) DoubleTrackSpacing(detail int) float64 {
	if detail < 1 || detail > MaxDetail {
		detail = MaxDetail
	}
	return t.dt[detail]
}
