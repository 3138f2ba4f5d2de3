// Package types provides the data contracts shared by every stage of the outreach pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// CareerLevel is the informal seniority bucket inferred from a resume.
type CareerLevel string

// Known career levels.
const (
	EntryLevel  CareerLevel = "Entry Level"
	MidLevel    CareerLevel = "Mid Level"
	SeniorLevel CareerLevel = "Senior Level"
	Executive   CareerLevel = "Executive"
)

// CareerLevels lists the closed set of career levels in ascending seniority.
var CareerLevels = []CareerLevel{EntryLevel, MidLevel, SeniorLevel, Executive}

// NormalizeCareerLevel maps free text onto the closed set of career levels.
// Matching is case-insensitive on the leading word ("entry", "mid", "senior", "exec").
// Text that matches none of them is returned trimmed, with ok=false.
func NormalizeCareerLevel(raw string) (level CareerLevel, ok bool) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	switch {
	case trimmed == "":
		return "", true
	case strings.HasPrefix(lower, "entry"), strings.HasPrefix(lower, "junior"):
		return EntryLevel, true
	case strings.HasPrefix(lower, "mid"):
		return MidLevel, true
	case strings.HasPrefix(lower, "senior"):
		return SeniorLevel, true
	case strings.HasPrefix(lower, "exec"):
		return Executive, true
	}
	return CareerLevel(trimmed), false
}

// ContactInfo holds the optional contact details found on a resume.
type ContactInfo struct {
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Location  string `json:"location,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// Experience is one position in the work history.
// All descriptive bullets belong in KeyResponsibilities.
type Experience struct {
	JobTitle            string   `json:"job_title" validate:"required,notblank"`
	Company             string   `json:"company" validate:"required,notblank"`
	Duration            string   `json:"duration" validate:"required,notblank"`
	KeyResponsibilities []string `json:"key_responsibilities"`
}

// Education is one degree or program.
type Education struct {
	Degree      string `json:"degree" validate:"required,notblank"`
	Institution string `json:"institution" validate:"required,notblank"`
	Year        string `json:"year,omitempty"`
}

// Project is a notable project called out on the resume.
type Project struct {
	Name         string   `json:"name" validate:"required,notblank"`
	Description  string   `json:"description" validate:"required,notblank"`
	Technologies []string `json:"technologies"`
}

// Summary is the structured extraction of a resume.
type Summary struct {
	FullName            string       `json:"full_name,omitempty"`
	ContactInfo         *ContactInfo `json:"contact_info,omitempty"`
	ProfessionalSummary string       `json:"professional_summary" validate:"required,notblank"`
	TechnicalSkills     []string     `json:"technical_skills"`
	SoftSkills          []string     `json:"soft_skills"`
	WorkExperience      []Experience `json:"work_experience" validate:"dive"`
	TotalExperience     string       `json:"total_experience,omitempty"`
	Education           []Education  `json:"education" validate:"dive"`
	NotableProjects     []Project    `json:"notable_projects" validate:"dive"`
	Certifications      []string     `json:"certifications"`
	Achievements        []string     `json:"achievements"`
	TargetRoles         []string     `json:"target_roles"`
	CareerLevel         CareerLevel  `json:"career_level,omitempty"`
}

// Validate checks the struct-level constraints of the summary.
func (s *Summary) Validate() error {
	return validate.Struct(s)
}

// Normalize fills list defaults, trims free-text fields and canonicalizes the career level.
// It reports whether the career level was recognized.
func (s *Summary) Normalize() (careerLevelKnown bool) {
	s.FullName = strings.TrimSpace(s.FullName)
	s.ProfessionalSummary = strings.TrimSpace(s.ProfessionalSummary)
	s.TotalExperience = strings.TrimSpace(s.TotalExperience)
	s.TechnicalSkills = nonNil(s.TechnicalSkills)
	s.SoftSkills = nonNil(s.SoftSkills)
	s.Certifications = nonNil(s.Certifications)
	s.Achievements = nonNil(s.Achievements)
	s.TargetRoles = nonNil(s.TargetRoles)
	if s.WorkExperience == nil {
		s.WorkExperience = []Experience{}
	}
	for i := range s.WorkExperience {
		s.WorkExperience[i].KeyResponsibilities = nonNil(s.WorkExperience[i].KeyResponsibilities)
	}
	if s.Education == nil {
		s.Education = []Education{}
	}
	if s.NotableProjects == nil {
		s.NotableProjects = []Project{}
	}
	for i := range s.NotableProjects {
		s.NotableProjects[i].Technologies = nonNil(s.NotableProjects[i].Technologies)
	}

	level, ok := NormalizeCareerLevel(string(s.CareerLevel))
	s.CareerLevel = level
	return ok
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
