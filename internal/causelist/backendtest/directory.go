// Package backendtest is an in-process fake of the cause-list backend. It
// serves the same five routes from a fixed court directory, records every
// call and lets tests inject failures, delays and hooks per path.
package backendtest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"causelist/internal/causelist/models"
)

// Directory is the state → district → complex → court tree the fake serves.
type Directory struct {
	States []State `yaml:"states"`
	// Status is returned by every successful submission. Empty means a
	// generated message naming the court and date.
	Status  string             `yaml:"status"`
	Entries []models.CaseEntry `yaml:"entries"`
}

type State struct {
	Name      string     `yaml:"name"`
	Districts []District `yaml:"districts"`
}

type District struct {
	Name      string    `yaml:"name"`
	Complexes []Complex `yaml:"complexes"`
}

type Complex struct {
	Name   string   `yaml:"name"`
	Courts []string `yaml:"courts"`
}

// DefaultDirectory is a small directory matching the examples used across the
// tests: Delhi has North and South, North has ComplexA with Court1 and Court2.
func DefaultDirectory() Directory {
	return Directory{
		States: []State{
			{
				Name: "Delhi",
				Districts: []District{
					{
						Name: "North",
						Complexes: []Complex{
							{Name: "ComplexA", Courts: []string{"Court1", "Court2"}},
							{Name: "ComplexB", Courts: []string{"Court3"}},
						},
					},
					{
						Name: "South",
						Complexes: []Complex{
							{Name: "Saket", Courts: []string{"Court4"}},
						},
					},
				},
			},
			{
				Name: "Goa",
				Districts: []District{
					{
						Name: "North Goa",
						Complexes: []Complex{
							{Name: "Panaji", Courts: []string{"Court 1 (JMFC)"}},
						},
					},
				},
			},
		},
	}
}

// LoadDirectory reads a YAML directory file.
func LoadDirectory(path string) (Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Directory{}, fmt.Errorf("read directory: %w", err)
	}
	var dir Directory
	if err := yaml.Unmarshal(data, &dir); err != nil {
		return Directory{}, fmt.Errorf("parse directory %s: %w", path, err)
	}
	if len(dir.States) == 0 {
		return Directory{}, fmt.Errorf("directory %s lists no states", path)
	}
	return dir, nil
}

// StateNames lists every state in file order.
func (d Directory) StateNames() []string {
	out := make([]string, 0, len(d.States))
	for _, s := range d.States {
		out = append(out, s.Name)
	}
	return out
}

// Districts returns the districts of state, or false when state is unknown.
func (d Directory) Districts(state string) ([]string, bool) {
	s, ok := d.state(state)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(s.Districts))
	for _, dist := range s.Districts {
		out = append(out, dist.Name)
	}
	return out, true
}

func (d Directory) Complexes(state, district string) ([]string, bool) {
	dist, ok := d.district(state, district)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(dist.Complexes))
	for _, c := range dist.Complexes {
		out = append(out, c.Name)
	}
	return out, true
}

func (d Directory) Courts(state, district, complexName string) ([]string, bool) {
	c, ok := d.complex(state, district, complexName)
	if !ok {
		return nil, false
	}
	return append([]string(nil), c.Courts...), true
}

// HasCourt reports whether the full path exists.
func (d Directory) HasCourt(state, district, complexName, court string) bool {
	courts, ok := d.Courts(state, district, complexName)
	if !ok {
		return false
	}
	for _, c := range courts {
		if c == court {
			return true
		}
	}
	return false
}

func (d Directory) state(name string) (State, bool) {
	for _, s := range d.States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}

func (d Directory) district(state, name string) (District, bool) {
	s, ok := d.state(state)
	if !ok {
		return District{}, false
	}
	for _, dist := range s.Districts {
		if dist.Name == name {
			return dist, true
		}
	}
	return District{}, false
}

func (d Directory) complex(state, district, name string) (Complex, bool) {
	dist, ok := d.district(state, district)
	if !ok {
		return Complex{}, false
	}
	for _, c := range dist.Complexes {
		if c.Name == name {
			return c, true
		}
	}
	return Complex{}, false
}
