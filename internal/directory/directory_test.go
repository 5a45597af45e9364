package directory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/christopherklint97/chatrail/internal/chip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() *Dataset {
	return &Dataset{
		Employees: []Employee{
			{ID: 2, Name: "Max Rodriguez", Department: "Marketing"},
			{ID: 1, Name: "Max Thompson", Department: "Engineering"},
			{ID: 3, Name: "Maxwell Chen", Department: "Sales"},
			{ID: 4, Name: "Sarah Johnson", Department: "Engineering"},
		},
		Departments: []Department{{ID: 1, Name: "Engineering"}, {ID: 2, Name: "Marketing"}},
		PayRuns:     []PayRun{{ID: 1, Period: "January 2024"}},
		PTO:         PTOSummary{Year: 2026, Remaining: "Unlimited"},
	}
}

func TestDefaultDataset(t *testing.T) {
	ds, err := DefaultDataset()
	require.NoError(t, err)
	assert.NotEmpty(t, ds.Employees)
	assert.Len(t, ds.Departments, 5)
	assert.Equal(t, "Unlimited", ds.PTO.Remaining)

	for _, e := range ds.Employees {
		_, err := e.LastPaycheckDate()
		assert.NoError(t, err, e.Name)
	}
}

func TestLoadDatasetRejectsDuplicates(t *testing.T) {
	_, err := LoadDataset(strings.NewReader(`employees:
  - {id: 1, name: A B}
  - {id: 1, name: C D}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadDatasetRejectsUnknownFields(t *testing.T) {
	_, err := LoadDataset(strings.NewReader("employes: []\n"))
	require.Error(t, err)
}

func TestMatchesFragment(t *testing.T) {
	maxw := Employee{Name: "Max Wesel"}
	maxwell := Employee{Name: "Maxwell Chen"}
	patel := Employee{Name: "Max Patel"}

	assert.True(t, MatchesFragment(maxw, "max"))
	assert.True(t, MatchesFragment(maxw, "WES"))
	assert.True(t, MatchesFragment(maxw, "maxwesel"))
	assert.True(t, MatchesFragment(maxwell, "max"))
	assert.False(t, MatchesFragment(maxw, "levchiin"))
	assert.False(t, MatchesFragment(patel, "tel"), "short fragments must start a name")
	assert.True(t, MatchesFragment(patel, "atel"))
	assert.True(t, MatchesFragment(Employee{Name: "Sarah Johnson"}, "ohnson"))
	assert.True(t, MatchesFragment(Employee{Name: "Max Thompson"}, "MPSON"))
	assert.True(t, MatchesFragment(maxw, "x wes"), "the whole name is searched")
	assert.False(t, MatchesFragment(maxw, " "))
}

func TestMemoryLookups(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testDataset())

	got, err := m.FindEmployeesByNameFragment(ctx, "max")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].ID, "results are ordered by id")

	eng, err := m.FindEmployeesByDepartment(ctx, "engineering")
	require.NoError(t, err)
	assert.Len(t, eng, 2)

	none, err := m.FindEmployeesByNameFragment(ctx, "zed")
	require.NoError(t, err)
	assert.Empty(t, none)

	e, err := EmployeeByID(ctx, m, got[0].ID)
	require.NoError(t, err)
	assert.Equal(t, got[0], e)

	_, err = EmployeeByID(ctx, m, -1)
	assert.ErrorIs(t, err, ErrNotFound)
}

type countingService struct {
	*Memory
	calls int
}

func (c *countingService) ListEmployees(ctx context.Context) ([]Employee, error) {
	c.calls++
	return c.Memory.ListEmployees(ctx)
}

func TestCachedListsRespectTTL(t *testing.T) {
	ctx := context.Background()
	inner := &countingService{Memory: NewMemory(testDataset())}
	c := NewCached(inner, time.Hour)

	for i := 0; i < 3; i++ {
		emps, err := c.ListEmployees(ctx)
		require.NoError(t, err)
		assert.Len(t, emps, 4)
	}
	assert.Equal(t, 1, inner.calls)

	c.Invalidate()
	_, err := c.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	expired := NewCached(inner, 0)
	_, _ = expired.ListEmployees(ctx)
	time.Sleep(time.Millisecond)
	_, _ = expired.ListEmployees(ctx)
	assert.Equal(t, 4, inner.calls)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testDataset())

	empty, err := Search(ctx, m, "")
	require.NoError(t, err)
	assert.Len(t, empty.Categories, 3)
	assert.NotEmpty(t, empty.Frequent)

	res, err := Search(ctx, m, "ma")
	require.NoError(t, err)
	assert.Len(t, res.Groups[chip.Employee], 3)
	assert.Len(t, res.Groups[chip.Department], 1)
	assert.Equal(t, "Marketing", res.Groups[chip.Department][0].Name)

	flat := res.Flat()
	require.Len(t, flat, 4)
	assert.Equal(t, "{{Max Thompson:employee}}", flat[0].Chip())

	runs, err := InCategory(ctx, m, chip.PayRun)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "{{Payroll - January 2024:payrun}}", runs[0].Chip())
}

func TestSuggestReferences(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testDataset())

	s, err := SuggestReferences(ctx, m, "how is sarah doing?")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "sarah", s.Word)
	assert.Equal(t, "Sarah Johnson", s.Matches[0].Name)

	s, err = SuggestReferences(ctx, m, "Engineering")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, chip.Department, s.Matches[0].Type, "exact matches come first")

	s, err = SuggestReferences(ctx, m, "already {{Sarah Johnson:employee}}")
	require.NoError(t, err)
	assert.Nil(t, s)

	replaced := ReplaceWord("how is sarah doing?", "sarah", Item{DisplayName: "Sarah Johnson", Type: chip.Employee})
	assert.Equal(t, "how is {{Sarah Johnson:employee}} doing?", replaced)
}
