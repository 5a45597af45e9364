package directory

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type Employee struct {
	ID           int    `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Department   string `yaml:"department" json:"department"`
	Role         string `yaml:"role" json:"role"`
	Salary       int64  `yaml:"salary" json:"salary"`
	LastPaycheck string `yaml:"last_paycheck" json:"last_paycheck"`
	Manager      string `yaml:"manager" json:"manager"`
}

// FirstName returns the first whitespace-separated part of the name.
func (e Employee) FirstName() string {
	parts := strings.Fields(e.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// LastName returns the second part of the name, or "" for single-word names.
func (e Employee) LastName() string {
	parts := strings.Fields(e.Name)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func (e Employee) LastPaycheckDate() (time.Time, error) {
	return time.Parse(dateLayout, e.LastPaycheck)
}

type Department struct {
	ID        int    `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Headcount int    `yaml:"headcount" json:"headcount"`
	Budget    int64  `yaml:"budget" json:"budget"`
}

type PayRun struct {
	ID            int    `yaml:"id" json:"id"`
	Period        string `yaml:"period" json:"period"`
	TotalAmount   int64  `yaml:"total_amount" json:"total_amount"`
	EmployeeCount int    `yaml:"employee_count" json:"employee_count"`
	ProcessedDate string `yaml:"processed_date" json:"processed_date"`
}

// PTOSummary is the current user's time-off record. Remaining is either a
// number of days or "Unlimited".
type PTOSummary struct {
	Year             int    `yaml:"year" json:"year"`
	Used             int    `yaml:"used" json:"used"`
	Remaining        string `yaml:"remaining" json:"remaining"`
	Policy           string `yaml:"policy" json:"policy"`
	ApprovalRequired string `yaml:"approval_required" json:"approval_required"`
	Manager          string `yaml:"manager" json:"manager"`
}

// Dataset is a complete directory snapshot, used to seed a backing store.
type Dataset struct {
	Employees   []Employee   `yaml:"employees"`
	Departments []Department `yaml:"departments"`
	PayRuns     []PayRun     `yaml:"payruns"`
	PTO         PTOSummary   `yaml:"pto"`
}
