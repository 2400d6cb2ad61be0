package symbols

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Direction is one of the four grid directions a strand can travel in.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in a fixed order.
var Directions = [...]Direction{Up, Down, Left, Right}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	panic(fmt.Sprintf("symbols: invalid direction %d", int(d)))
}

// Step returns the column and row offsets of one move in direction d.
func (d Direction) Step() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	panic(fmt.Sprintf("symbols: invalid direction %d", int(d)))
}

// Horizontal reports whether d moves along a row.
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection converts a lexicon direction name.
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("symbols: unknown direction %q", name)
}

// UnmarshalYAML decodes a direction name.
func (d *Direction) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("symbols: line %d: direction must be a string", value.Line)
	}
	parsed, err := ParseDirection(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = parsed
	return nil
}

// DirectionSet is a small set of directions, decoded from a YAML scalar or list.
type DirectionSet []Direction

// Has reports whether d is a member of the set.
func (s DirectionSet) Has(d Direction) bool {
	for _, member := range s {
		if member == d {
			return true
		}
	}
	return false
}

// Other returns the single member that is not d. It fails when the set does not
// contain d or holds more than one other direction.
func (s DirectionSet) Other(d Direction) (Direction, bool) {
	found := false
	var other Direction
	for _, member := range s {
		if member == d {
			continue
		}
		if found {
			return 0, false
		}
		other = member
		found = true
	}
	return other, found && s.Has(d)
}

// UnmarshalYAML accepts either a single direction name or a sequence of names.
func (s *DirectionSet) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var d Direction
		if err := value.Decode(&d); err != nil {
			return err
		}
		*s = DirectionSet{d}
		return nil
	case yaml.SequenceNode:
		out := make(DirectionSet, 0, len(value.Content))
		for _, node := range value.Content {
			var d Direction
			if err := node.Decode(&d); err != nil {
				return err
			}
			if out.Has(d) {
				return fmt.Errorf("symbols: line %d: duplicate direction %s", node.Line, d)
			}
			out = append(out, d)
		}
		*s = out
		return nil
	}
	return fmt.Errorf("symbols: line %d: dir must be a direction or a list of directions", value.Line)
}
