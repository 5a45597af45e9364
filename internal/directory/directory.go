// Package directory is the read-only HR data surface the assistant queries:
// employees, departments, pay runs and the current user's time-off record.
package directory

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by lookups that expect exactly one record.
var ErrNotFound = errors.New("directory: not found")

// Service is the query surface consumed by the assistant. Implementations may
// be remote or slow; an empty result is a nil slice and a nil error.
type Service interface {
	FindEmployeesByNameFragment(ctx context.Context, fragment string) ([]Employee, error)
	FindEmployeesByDepartment(ctx context.Context, department string) ([]Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	ListPayRuns(ctx context.Context) ([]PayRun, error)
	CurrentUserPTOSummary(ctx context.Context) (PTOSummary, error)
}

// EmployeeByID finds one employee or returns ErrNotFound.
func EmployeeByID(ctx context.Context, svc Service, id int) (Employee, error) {
	emps, err := svc.ListEmployees(ctx)
	if err != nil {
		return Employee{}, fmt.Errorf("listing employees: %w", err)
	}
	for _, e := range emps {
		if e.ID == id {
			return e, nil
		}
	}
	return Employee{}, ErrNotFound
}

const (
	// minContainedPart is the shortest name part that may be found inside a
	// longer typed fragment ("maxwesel" contains "wesel").
	minContainedPart = 3
	// minInnerFragment is the shortest fragment looked up anywhere in the
	// full name. Shorter ones must start a first or last name, so "tel" in
	// "Tel me about..." does not pick out Max Patel.
	minInnerFragment = 4
)

// MatchesFragment reports whether a typed fragment refers to the employee:
// the full name contains the fragment (fragments shorter than four letters
// must start the first or last name instead), or the fragment contains the
// first or last name. Comparison is case-insensitive.
func MatchesFragment(e Employee, fragment string) bool {
	frag := strings.ToLower(strings.TrimSpace(fragment))
	if frag == "" {
		return false
	}
	if len(frag) >= minInnerFragment && strings.Contains(strings.ToLower(e.Name), frag) {
		return true
	}
	for _, part := range []string{e.FirstName(), e.LastName()} {
		part = strings.ToLower(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, frag) {
			return true
		}
		if len(part) >= minContainedPart && strings.Contains(frag, part) {
			return true
		}
	}
	return false
}

//go:embed seed.yaml
var seedYAML []byte

// DefaultDataset returns the embedded demo dataset.
func DefaultDataset() (*Dataset, error) {
	return LoadDataset(bytes.NewReader(seedYAML))
}

func LoadDataset(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// LoadDatasetFile reads a dataset from path, or the embedded one when path is empty.
func LoadDatasetFile(path string) (*Dataset, error) {
	if path == "" {
		return DefaultDataset()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()
	return LoadDataset(f)
}

func (ds *Dataset) validate() error {
	seen := make(map[int]bool, len(ds.Employees))
	for _, e := range ds.Employees {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("employee %d has no name", e.ID)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate employee id %d", e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}
