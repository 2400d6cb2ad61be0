package driver

import (
	"fmt"
	"os"

	"github.com/jwoLondon/Rivulet/pkg/parser"
)

// LoadProgram reads and parses the program at path.
func LoadProgram(path string, opts ...parser.Option) (*parser.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	program, err := parser.Parse(string(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}
