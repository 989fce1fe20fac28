package models

import "fmt"

// Level identifies one select in the state → district → complex → court chain.
type Level int

const (
	LevelState Level = iota
	LevelDistrict
	LevelComplex
	LevelCourt
)

// Levels lists every level from the root of the chain down.
var Levels = []Level{LevelState, LevelDistrict, LevelComplex, LevelCourt}

var levelNames = map[Level]string{
	LevelState:    "state",
	LevelDistrict: "district",
	LevelComplex:  "complex",
	LevelCourt:    "court",
}

var levelPlaceholders = map[Level]string{
	LevelState:    "--Select State--",
	LevelDistrict: "--Select District--",
	LevelComplex:  "--Select Complex--",
	LevelCourt:    "--Select Court--",
}

// ParseLevel maps a select identifier ("state", "district", ...) to a Level.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown level: %q", s)
}

// String returns the element identifier used for the select.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Placeholder is the label of the synthetic "no selection" option.
func (l Level) Placeholder() string {
	return levelPlaceholders[l]
}

// Descendants returns every level below l, nearest first.
func (l Level) Descendants() []Level {
	var out []Level
	for _, d := range Levels {
		if d > l {
			out = append(out, d)
		}
	}
	return out
}

// Valid reports whether l is one of the four known levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// ResponseKey is the JSON key the backend uses for this level's list.
func (l Level) ResponseKey() string {
	switch l {
	case LevelState:
		return "states"
	case LevelDistrict:
		return "districts"
	case LevelComplex:
		return "complexes"
	case LevelCourt:
		return "courts"
	}
	return ""
}

// Option is one entry of a select. The placeholder has an empty Value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionList is the ordered set of labels the backend returned for a level.
type OptionList struct {
	Level  Level    `json:"-" msgpack:"level"`
	Labels []string `json:"labels" msgpack:"labels"`
}

// NewOptionList copies labels so later mutation by the caller cannot leak in.
func NewOptionList(level Level, labels []string) OptionList {
	cp := make([]string, len(labels))
	copy(cp, labels)
	return OptionList{Level: level, Labels: cp}
}

// EmptyOptionList is the placeholder-only state of a select.
func EmptyOptionList(level Level) OptionList {
	return OptionList{Level: level}
}

// Options renders the list as select options: the placeholder first, then one
// option per label in backend order.
func (o OptionList) Options() []Option {
	out := make([]Option, 0, len(o.Labels)+1)
	out = append(out, Option{Value: "", Label: o.Level.Placeholder()})
	for _, label := range o.Labels {
		out = append(out, Option{Value: label, Label: label})
	}
	return out
}

// Contains reports whether value is one of the returned labels.
func (o OptionList) Contains(value string) bool {
	for _, label := range o.Labels {
		if label == value {
			return true
		}
	}
	return false
}
