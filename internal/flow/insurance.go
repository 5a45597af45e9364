package flow

import (
	"fmt"
	"strings"
)

// InsuranceOption is one coverage type with its static plan record.
type InsuranceOption struct {
	Type       string   `json:"type"`
	Plan       string   `json:"plan"`
	Premium    string   `json:"premium"`
	Coverage   string   `json:"coverage"`
	Deductible string   `json:"deductible"`
	Network    string   `json:"network"`
	Details    []Detail `json:"details"`
}

type Detail struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func InsuranceOptions() []InsuranceOption {
	return []InsuranceOption{
		{
			Type:       "Medical",
			Plan:       "PPO Gold",
			Premium:    "$245/month",
			Coverage:   "Employee + Family",
			Deductible: "$1,500",
			Network:    "Blue Shield PPO",
			Details: []Detail{
				{"primary care", "$25 copay"},
				{"specialist", "$50 copay"},
				{"emergency", "$250 copay"},
				{"prescriptions", "$10 / $35 / $60"},
			},
		},
		{
			Type:       "Dental",
			Plan:       "Dental Plus",
			Premium:    "$42/month",
			Coverage:   "Employee + Spouse",
			Deductible: "$50",
			Network:    "Delta Dental PPO",
			Details: []Detail{
				{"preventive", "100% covered"},
				{"basic", "80% covered"},
				{"major", "50% covered"},
				{"orthodontics", "$1,500 lifetime maximum"},
			},
		},
		{
			Type:       "Vision",
			Plan:       "Vision Care",
			Premium:    "$12/month",
			Coverage:   "Employee Only",
			Deductible: "$0",
			Network:    "VSP Choice",
			Details: []Detail{
				{"exams", "$10 copay, once a year"},
				{"lenses", "$25 copay"},
				{"frames", "$150 allowance"},
				{"contacts", "$150 allowance"},
			},
		},
	}
}

// InsuranceOptionByType finds an option case-insensitively.
func InsuranceOptionByType(kind string) (InsuranceOption, bool) {
	for _, o := range InsuranceOptions() {
		if strings.EqualFold(o.Type, strings.TrimSpace(kind)) {
			return o, true
		}
	}
	return InsuranceOption{}, false
}

// DetailsMessage is the answer shown after an option is picked.
func (o InsuranceOption) DetailsMessage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here's your **%s** insurance coverage details:\n\n", o.Type)
	fmt.Fprintf(&b, "**Plan:** %s\n**Premium:** %s (%s)\n**Deductible:** %s\n**Network:** %s\n\n",
		o.Plan, o.Premium, o.Coverage, o.Deductible, o.Network)
	b.WriteString("**Coverage Details:**\n")
	for _, d := range o.Details {
		fmt.Fprintf(&b, "• **%s:** %s\n", capitalize(d.Key), d.Value)
	}
	fmt.Fprintf(&b, "\nYour %s insurance is active and covers %s. You can make changes during open enrollment or if you have a qualifying life event.",
		strings.ToLower(o.Type), strings.ToLower(o.Coverage))
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
