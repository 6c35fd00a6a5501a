package epidemic

import (
	"image/color"
	"slices"

	"epi-ca/internal/core"
)

var epidemicPalette = []color.RGBA{
	Susceptible: {R: 255, G: 255, B: 0, A: 255},
	Affected:    {R: 255, G: 182, B: 193, A: 255},
	Recovered:   {R: 46, G: 139, B: 87, A: 255},
	Dead:        {R: 128, G: 128, B: 128, A: 255},
	Vaccinated:  {R: 0, G: 255, B: 255, A: 255},
}

// Palette exposes the color palette used for rendering the epidemic grid.
func (e *Epidemic) Palette() []color.RGBA {
	return Palette()
}

// Palette returns a copy of the fixed state to color mapping shared by the
// GUI and the exporters.
func Palette() []color.RGBA {
	return slices.Clone(epidemicPalette)
}

// Color returns the display color of s.
func (s State) Color() color.RGBA {
	if !s.Valid() {
		return color.RGBA{A: 255}
	}
	return epidemicPalette[s]
}

// Legend lists each state with its color and current normalized count.
func (e *Epidemic) Legend() []core.LegendEntry {
	entries := make([]core.LegendEntry, 0, NumStates)
	for _, st := range States {
		entries = append(entries, core.LegendEntry{
			Label: st.String(),
			Color: st.Color(),
			Value: e.counts[st],
		})
	}
	return entries
}
