// Copyright 2025 Veyra Protocol

package resume

import (
	"testing"
	"time"
)

func TestTopSkills_OrderingAndLimit(t *testing.T) {
	skills := []Skill{
		{Name: "go", Proficiency: 4, YearsOfExperience: 3},
		{Name: "rust", Proficiency: 4, YearsOfExperience: 5},
		{Name: "python", Proficiency: 5, YearsOfExperience: 1},
		{Name: "sql", Proficiency: 2, YearsOfExperience: 10},
		{Name: "c", Proficiency: 4, YearsOfExperience: 5},
		{Name: "bash", Proficiency: 1, YearsOfExperience: 2},
	}
	r := Resume{Skills: skills}
	top := r.TopSkills()
	if len(top) != 5 {
		t.Fatalf("expected 5 top skills, got %d", len(top))
	}
	if top[0].Name != "python" {
		t.Errorf("expected python first (highest proficiency), got %s", top[0].Name)
	}
	// c and rust tie on proficiency(4) and years(5); name asc breaks tie.
	if top[1].Name != "c" || top[2].Name != "rust" {
		t.Errorf("expected c before rust on name tie-break, got %s, %s", top[1].Name, top[2].Name)
	}
}

func TestTotalYearsExperience(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Resume{Employment: []Employment{
		{StartDate: now.AddDate(-2, 0, 0)},
		{StartDate: now.AddDate(-1, 0, 0), EndDate: timePtr(now.AddDate(0, -6, 0))},
	}}
	total := r.TotalYearsExperience(now)
	if total < 2.4 || total > 2.6 {
		t.Errorf("expected ~2.5 years total, got %f", total)
	}
}

func TestParseQualificationLevel_Ordering(t *testing.T) {
	levels := []string{"certification", "bachelor", "master", "doctorate", "professional"}
	var prev QualificationLevel = -1
	for _, l := range levels {
		lvl, err := ParseQualificationLevel(l)
		if err != nil {
			t.Fatalf("parse %s: %v", l, err)
		}
		if lvl <= prev {
			t.Errorf("expected %s to rank above previous level", l)
		}
		prev = lvl
	}
}

func timePtr(t time.Time) *time.Time { return &t }
