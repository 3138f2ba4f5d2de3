package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCareerLevel(t *testing.T) {
	tests := []struct {
		raw   string
		want  CareerLevel
		known bool
	}{
		{"", "", true},
		{"Entry Level", EntryLevel, true},
		{"entry-level", EntryLevel, true},
		{"Junior", EntryLevel, true},
		{"mid level", MidLevel, true},
		{"Mid-Senior", MidLevel, true},
		{"  SENIOR LEVEL ", SeniorLevel, true},
		{"Executive", Executive, true},
		{"exec", Executive, true},
		{"Principal", CareerLevel("Principal"), false},
		{" Staff Engineer ", CareerLevel("Staff Engineer"), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, known := NormalizeCareerLevel(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestSummary_JSONUnknownFieldsIgnored(t *testing.T) {
	raw := `{
		"full_name": "Asha Rao",
		"professional_summary": "Backend engineer.",
		"technical_skills": ["Go"],
		"work_experience": [{"job_title": "SWE", "company": "Acme", "duration": "2 years", "key_responsibilities": ["Built APIs"], "team_size": 4}],
		"hobbies": ["chess"]
	}`

	var s Summary
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, "Asha Rao", s.FullName)
	require.Len(t, s.WorkExperience, 1)
	assert.Equal(t, []string{"Built APIs"}, s.WorkExperience[0].KeyResponsibilities)
	assert.NoError(t, s.Validate())
}

func TestSummary_Validate(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		field   string
	}{
		{
			name:    "missing professional summary",
			summary: Summary{},
			field:   "professional_summary",
		},
		{
			name:    "blank professional summary",
			summary: Summary{ProfessionalSummary: " \n\t"},
			field:   "professional_summary",
		},
		{
			name: "experience without company",
			summary: Summary{
				ProfessionalSummary: "ok",
				WorkExperience:      []Experience{{JobTitle: "SWE", Duration: "1 year"}},
			},
			field: "work_experience[0].company",
		},
		{
			name: "education without institution",
			summary: Summary{
				ProfessionalSummary: "ok",
				Education:           []Education{{Degree: "BSc"}},
			},
			field: "education[0].institution",
		},
		{
			name: "project without description",
			summary: Summary{
				ProfessionalSummary: "ok",
				NotableProjects:     []Project{{Name: "cold-message"}},
			},
			field: "notable_projects[0].description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.summary.Validate()
			require.Error(t, err)
			fields := FieldErrors(err)
			require.NotEmpty(t, fields)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}
}

func TestSummary_Normalize(t *testing.T) {
	s := Summary{
		FullName:            "  Asha Rao ",
		ProfessionalSummary: " Backend engineer. ",
		TotalExperience:     " 5 years ",
		WorkExperience:      []Experience{{JobTitle: "SWE", Company: "Acme", Duration: "2y"}},
		NotableProjects:     []Project{{Name: "x", Description: "y"}},
		CareerLevel:         "senior",
	}

	known := s.Normalize()
	assert.True(t, known)
	assert.Equal(t, "Asha Rao", s.FullName)
	assert.Equal(t, "Backend engineer.", s.ProfessionalSummary)
	assert.Equal(t, "5 years", s.TotalExperience)
	assert.Equal(t, SeniorLevel, s.CareerLevel)
	assert.NotNil(t, s.TechnicalSkills)
	assert.NotNil(t, s.Education)
	assert.NotNil(t, s.WorkExperience[0].KeyResponsibilities)
	assert.NotNil(t, s.NotableProjects[0].Technologies)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"technical_skills":[]`)
}

func TestSummary_NormalizeUnknownCareerLevel(t *testing.T) {
	s := Summary{ProfessionalSummary: "ok", CareerLevel: "Distinguished"}
	assert.False(t, s.Normalize())
	assert.Equal(t, CareerLevel("Distinguished"), s.CareerLevel)
}
