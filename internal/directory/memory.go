package directory

import (
	"context"
	"sort"
	"strings"
)

// Memory serves a Dataset held in memory. It is safe for concurrent readers
// because nothing mutates the dataset after construction.
type Memory struct {
	ds Dataset
}

func NewMemory(ds *Dataset) *Memory {
	m := &Memory{}
	if ds != nil {
		m.ds = *ds
		m.ds.Employees = append([]Employee(nil), ds.Employees...)
	}
	sort.SliceStable(m.ds.Employees, func(i, j int) bool {
		return m.ds.Employees[i].ID < m.ds.Employees[j].ID
	})
	return m
}

func (m *Memory) FindEmployeesByNameFragment(_ context.Context, fragment string) ([]Employee, error) {
	var out []Employee
	for _, e := range m.ds.Employees {
		if MatchesFragment(e, fragment) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) FindEmployeesByDepartment(_ context.Context, department string) ([]Employee, error) {
	var out []Employee
	for _, e := range m.ds.Employees {
		if strings.EqualFold(e.Department, department) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) ListEmployees(context.Context) ([]Employee, error) {
	return append([]Employee(nil), m.ds.Employees...), nil
}

func (m *Memory) ListDepartments(context.Context) ([]Department, error) {
	return append([]Department(nil), m.ds.Departments...), nil
}

func (m *Memory) ListPayRuns(context.Context) ([]PayRun, error) {
	return append([]PayRun(nil), m.ds.PayRuns...), nil
}

func (m *Memory) CurrentUserPTOSummary(context.Context) (PTOSummary, error) {
	return m.ds.PTO, nil
}
