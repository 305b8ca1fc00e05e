package dashboard

// Figure is a chart description in the shape plotting front ends expect:
// named traces plus a layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one named x/y series. X holds numbers or YYYY-MM-DD strings.
type Trace struct {
	Name string    `json:"name,omitempty"`
	X    []any     `json:"x"`
	Y    []float64 `json:"y"`
}

type Layout struct {
	Title string `json:"title"`
}

// DefaultFigure is what the stock page shows before the first submit.
func DefaultFigure() Figure {
	return Figure{
		Data:   []Trace{{X: []any{1, 2}, Y: []float64{3, 1}}},
		Layout: Layout{Title: "Default Title"},
	}
}
