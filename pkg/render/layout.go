// Package render formats log records as fixed-column, colourised terminal
// lines with wrapping for long messages.
package render

// Layout controls which columns are shown and how wide they are.
type Layout struct {
	HideTimestamp    bool
	HideDate         bool
	UseProcessName   bool
	BrightColors     bool
	TagWidth         int
	ProcessNameWidth int
	PIDWidth         int
}

// DefaultLayout returns the stock column configuration.
func DefaultLayout() Layout {
	return Layout{
		HideDate:         true,
		UseProcessName:   true,
		TagWidth:         30,
		ProcessNameWidth: 20,
		PIDWidth:         10,
	}
}

const (
	timeFormat     = "15:04:05"
	dateTimeFormat = "01-02 15:04:05"
)

// timestampWidth is the rune width of the timestamp column.
func (l Layout) timestampWidth() int {
	switch {
	case l.HideTimestamp:
		return 0
	case l.HideDate:
		return len(timeFormat)
	default:
		return len(dateTimeFormat)
	}
}
