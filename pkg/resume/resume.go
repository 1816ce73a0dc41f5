// Copyright 2025 Veyra Protocol
//
// Package resume models the résumé sub-records the credential and ZKP
// layers operate over (spec §3: "userDid, full name, optional contact
// fields, ordered lists of Employment, Education, Certification, Skill
// records"). Grounded on the teacher's typed record style in
// pkg/database/types.go.
package resume

import (
	"fmt"
	"strings"
	"time"

	"github.com/veyra-network/vey-core/pkg/vyerr"
)

// Employment is one work-history entry. VerifierDID, when set, names the
// organization's DID used as the membership-set key for the employment
// membership proof (spec §4.E); records without one cannot be proved as
// members of a verified-organizations set.
type Employment struct {
	Employer   string
	Title      string
	StartDate  time.Time
	EndDate    *time.Time
	VerifierDID string
}

// YearsOfExperience returns the employment's duration in fractional
// years, measured against end (or EndDate if set).
func (e Employment) YearsOfExperience(end time.Time) float64 {
	stop := end
	if e.EndDate != nil {
		stop = *e.EndDate
	}
	if stop.Before(e.StartDate) {
		return 0
	}
	return stop.Sub(e.StartDate).Hours() / (24 * 365.25)
}

// Education is one degree/program entry.
type Education struct {
	Institution string
	Degree      string
	Field       string
	GradDate    time.Time
	VerifierDID string
}

// Certification is one professional certification entry.
type Certification struct {
	Name       string
	Issuer     string
	IssueDate  time.Time
	ExpiryDate *time.Time
	VerifierDID string
}

// QualificationLevel is the ordered enum spec §4.E mandates for
// qualification proofs: certification < bachelor < master < doctorate <
// professional.
type QualificationLevel int

const (
	LevelCertification QualificationLevel = iota
	LevelBachelor
	LevelMaster
	LevelDoctorate
	LevelProfessional
)

// ParseQualificationLevel maps a case-insensitive level name to its enum
// value.
func ParseQualificationLevel(s string) (QualificationLevel, error) {
	switch strings.ToLower(s) {
	case "certification":
		return LevelCertification, nil
	case "bachelor":
		return LevelBachelor, nil
	case "master":
		return LevelMaster, nil
	case "doctorate":
		return LevelDoctorate, nil
	case "professional":
		return LevelProfessional, nil
	default:
		return 0, fmt.Errorf("%w: unknown qualification level %q", vyerr.ErrInvalidFormat, s)
	}
}

// Skill is one proficiency entry in a category, with years of
// experience at that proficiency (spec §4.E skill proof).
type Skill struct {
	Name             string
	Category         string
	Proficiency      int // 1-5, higher is more proficient
	YearsOfExperience float64
}

// Resume bundles a subject's full résumé history (spec §3).
type Resume struct {
	UserDID        string
	FullName       string
	ContactEmail   string
	Employment     []Employment
	Education      []Education
	Certifications []Certification
	Skills         []Skill
}

// TotalYearsExperience sums YearsOfExperience across all employment
// records as of asOf (spec §4.E: derived field for selective-reveal).
func (r Resume) TotalYearsExperience(asOf time.Time) float64 {
	var total float64
	for _, e := range r.Employment {
		total += e.YearsOfExperience(asOf)
	}
	return total
}

// EmploymentCount is the number of employment records (spec §4.E
// derived field).
func (r Resume) EmploymentCount() int {
	return len(r.Employment)
}

// TopSkills returns up to 5 skills ordered by (proficiency desc,
// yearsOfExperience desc, name asc), per spec §4.E's selection rule.
func (r Resume) TopSkills() []Skill {
	sorted := append([]Skill(nil), r.Skills...)
	sortSkills(sorted)
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	return sorted
}

func sortSkills(skills []Skill) {
	for i := 1; i < len(skills); i++ {
		for j := i; j > 0 && skillLess(skills[j], skills[j-1]); j-- {
			skills[j], skills[j-1] = skills[j-1], skills[j]
		}
	}
}

// skillLess reports whether a sorts before b under the topSkills order.
func skillLess(a, b Skill) bool {
	if a.Proficiency != b.Proficiency {
		return a.Proficiency > b.Proficiency
	}
	if a.YearsOfExperience != b.YearsOfExperience {
		return a.YearsOfExperience > b.YearsOfExperience
	}
	return a.Name < b.Name
}
