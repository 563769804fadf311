package domain

// Figure describes one chart as plain data. The page hands it to the
// plotting library unchanged; everything past this point is rendering, not
// data transformation.
type Figure struct {
	Kind        FigureKind   `json:"kind"`
	Title       string       `json:"title"`
	PanelTitles []string     `json:"panel_titles,omitempty"`
	Series      []Series     `json:"series,omitempty"`
	Pie         *PieData     `json:"pie,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
	HoverFormat string       `json:"hover_format,omitempty"`
}

// FigureKind selects the chart family.
type FigureKind string

const (
	FigureLine FigureKind = "line"
	FigurePie  FigureKind = "pie"
)

// Series is one line trace. Panel places the trace on a subplot (1-based);
// a single-panel figure uses panel 1 throughout. X values are ISO dates.
type Series struct {
	Name  string   `json:"name"`
	Panel int      `json:"panel"`
	Color string   `json:"color,omitempty"`
	Width int      `json:"width,omitempty"`
	X     []string `json:"x"`
	Y     []int    `json:"y"`
}

// PieData carries a categorical share breakdown.
type PieData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Annotation is a point callout on panel 1 (milestone markers).
type Annotation struct {
	X    string `json:"x"`
	Y    int    `json:"y"`
	Text string `json:"text"`
}
