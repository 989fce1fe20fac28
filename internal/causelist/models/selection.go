package models

// Field names one of the five values a submission needs.
type Field string

const (
	FieldState    Field = "state"
	FieldDistrict Field = "district"
	FieldComplex  Field = "complex"
	FieldCourt    Field = "court"
	FieldDate     Field = "date"
)

// Selection is the transient form state. Date stays in the input format
// (YYYY-MM-DD) until a submission parses it.
type Selection struct {
	State    string `json:"state"`
	District string `json:"district"`
	Complex  string `json:"complex"`
	Court    string `json:"court"`
	Date     string `json:"date"`
}

// Value returns the selected value at level.
func (s Selection) Value(level Level) string {
	switch level {
	case LevelState:
		return s.State
	case LevelDistrict:
		return s.District
	case LevelComplex:
		return s.Complex
	case LevelCourt:
		return s.Court
	}
	return ""
}

// With returns a copy of s with level set to value and every descendant cleared.
func (s Selection) With(level Level, value string) Selection {
	s.set(level, value)
	for _, d := range level.Descendants() {
		s.set(d, "")
	}
	return s
}

func (s *Selection) set(level Level, value string) {
	switch level {
	case LevelState:
		s.State = value
	case LevelDistrict:
		s.District = value
	case LevelComplex:
		s.Complex = value
	case LevelCourt:
		s.Court = value
	}
}

// Path returns the ancestor values needed to fetch the options of level, or
// false when one of them is empty. The state list needs no ancestors.
func (s Selection) Path(level Level) ([]string, bool) {
	var path []string
	for _, l := range Levels {
		if l >= level {
			break
		}
		v := s.Value(l)
		if v == "" {
			return nil, false
		}
		path = append(path, v)
	}
	return path, true
}

// Missing lists the empty fields in form order.
func (s Selection) Missing() []Field {
	var missing []Field
	for _, f := range []struct {
		field Field
		value string
	}{
		{FieldState, s.State},
		{FieldDistrict, s.District},
		{FieldComplex, s.Complex},
		{FieldCourt, s.Court},
		{FieldDate, s.Date},
	} {
		if f.value == "" {
			missing = append(missing, f.field)
		}
	}
	return missing
}

// Validate fails with a *ValidationError when any of the five fields is empty.
func (s Selection) Validate() error {
	if missing := s.Missing(); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
