package runtime

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ErrUnknownList is wrapped by errors addressing a list the state does not hold.
var ErrUnknownList = errors.New("unknown list")

// State is the program store: ordered integer lists keyed by prime address.
type State struct {
	lists map[int][]int64
}

// NewState creates an empty list for every address.
func NewState(addresses []int) *State {
	s := &State{lists: make(map[int][]int64, len(addresses))}
	s.Extend(addresses)
	return s
}

// Extend adds empty lists for addresses the state does not hold yet.
func (s *State) Extend(addresses []int) {
	for _, addr := range addresses {
		if _, ok := s.lists[addr]; !ok {
			s.lists[addr] = []int64{}
		}
	}
}

// Has reports whether the state holds list addr.
func (s *State) Has(addr int) bool {
	_, ok := s.lists[addr]
	return ok
}

// List returns a copy of list addr.
func (s *State) List(addr int) ([]int64, bool) {
	list, ok := s.lists[addr]
	if !ok {
		return nil, false
	}
	return slices.Clone(list), true
}

// Len is the length of list addr, 0 when it does not exist.
func (s *State) Len(addr int) int {
	return len(s.lists[addr])
}

// Cell reads list[addr][i]; undefined cells read as 0.
func (s *State) Cell(addr, i int) int64 {
	list := s.lists[addr]
	if i < 0 || i >= len(list) {
		return 0
	}
	return list[i]
}

// Ensure pads list addr with zeros until cell i exists.
func (s *State) Ensure(addr, i int) error {
	list, err := s.lookup(addr)
	if err != nil {
		return err
	}
	for len(list) <= i {
		list = append(list, 0)
	}
	s.lists[addr] = list
	return nil
}

// Set writes list[addr][i], growing the list with zeros as needed.
func (s *State) Set(addr, i int, value int64) error {
	if err := s.Ensure(addr, i); err != nil {
		return err
	}
	s.lists[addr][i] = value
	return nil
}

// Append adds values to the end of list addr.
func (s *State) Append(addr int, values ...int64) error {
	list, err := s.lookup(addr)
	if err != nil {
		return err
	}
	s.lists[addr] = append(list, values...)
	return nil
}

// Insert places values before cell i, or at the end when i is past it.
func (s *State) Insert(addr, i int, values ...int64) error {
	list, err := s.lookup(addr)
	if err != nil {
		return err
	}
	i = min(max(i, 0), len(list))
	s.lists[addr] = slices.Insert(list, i, values...)
	return nil
}

// Remove deletes list[addr][i] and returns it.
func (s *State) Remove(addr, i int) (int64, bool) {
	list := s.lists[addr]
	if i < 0 || i >= len(list) {
		return 0, false
	}
	value := list[i]
	s.lists[addr] = slices.Delete(list, i, i+1)
	return value, true
}

// Pop removes and returns the last cell of list addr.
func (s *State) Pop(addr int) (int64, bool) {
	return s.Remove(addr, len(s.lists[addr])-1)
}

// Clear empties list addr.
func (s *State) Clear(addr int) {
	if _, ok := s.lists[addr]; ok {
		s.lists[addr] = []int64{}
	}
}

// Clone returns a deep copy: no list is shared with s.
func (s *State) Clone() *State {
	out := &State{lists: make(map[int][]int64, len(s.lists))}
	for addr, list := range s.lists {
		out.lists[addr] = slices.Clone(list)
	}
	return out
}

// Restore replaces the contents of s with a copy of snapshot.
func (s *State) Restore(snapshot *State) {
	s.lists = snapshot.Clone().lists
}

// Addresses returns the list addresses in ascending order.
func (s *State) Addresses() []int {
	keys := make([]int, 0, len(s.lists))
	for k := range s.lists {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Snapshot returns a deep copy of the lists keyed by address.
func (s *State) Snapshot() map[int][]int64 {
	return s.Clone().lists
}

// Equal reports whether both states hold the same lists with the same cells.
func (s *State) Equal(other *State) bool {
	if other == nil || len(s.lists) != len(other.lists) {
		return false
	}
	for addr, list := range s.lists {
		o, ok := other.lists[addr]
		if !ok || !slices.Equal(list, o) {
			return false
		}
	}
	return true
}

func (s *State) String() string {
	var b strings.Builder
	for i, addr := range s.Addresses() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d:%v", addr, s.lists[addr])
	}
	return b.String()
}

func (s *State) lookup(addr int) ([]int64, error) {
	list, ok := s.lists[addr]
	if !ok {
		return nil, fmt.Errorf("list %d: %w", addr, ErrUnknownList)
	}
	return list, nil
}
