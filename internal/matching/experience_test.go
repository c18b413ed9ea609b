package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExperienceEstimator_Estimate(t *testing.T) {
	t.Parallel()
	e := NewExperienceEstimator(nil)

	tests := []struct {
		name    string
		cv, job string
		want    float64
	}{
		{"meets requirement", "5 years of nursing", "4 years required", ExperienceHigh},
		{"exactly 80 percent", "8 years", "10 years", ExperienceHigh},
		{"half of requirement", "2 years", "4 years", ExperienceMedium},
		{"below half", "1 year", "4 years", ExperienceLow},
		{"cv average is used", "2 years at A, 6 years at B", "5 years", ExperienceHigh},
		{"first job figure is the requirement", "3 years", "3 years minimum, 10 years preferred", ExperienceHigh},
		{"range takes figure before marker", "4 years", "3-5 years", ExperienceHigh},
		{"no space before marker", "7years", "10years", ExperienceMedium},
		{"case insensitive", "5 YEARS", "5 Years", ExperienceHigh},
		{"swedish marker", "8 års erfarenhet", "minst 5 år", ExperienceHigh},
		{"swedish marker uppercase", "2 ÅR", "6 år", ExperienceLow},
		{"cv has no years", "lots of experience", "5 years", ExperienceNeutral},
		{"job has no years", "5 years", "experienced engineer", ExperienceNeutral},
		{"both empty", "", "", ExperienceNeutral},
		{"overflowing integer is neutral", "99999999999999999999999 years", "5 years", ExperienceNeutral},
		{"zero requirement", "0 years", "0 years", ExperienceHigh},
		{"non-breaking space before marker", "5\u00a0years", "10 years", ExperienceMedium},
		{"narrow no-break space before marker", "9\u202fyears", "10\u00a0years", ExperienceHigh},
		{"fullwidth digits", "\uff15 years", "10 years", ExperienceMedium},
		{"arabic-indic digits", "\u0668 years", "10 years", ExperienceHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Estimate(tt.cv, tt.job))
		})
	}
}

func TestExperienceEstimator_MentionsYears(t *testing.T) {
	t.Parallel()
	e := NewExperienceEstimator(nil)

	assert.True(t, e.MentionsYears("ten years in retail"))
	assert.True(t, e.MentionsYears("TEN YEARS"))
	assert.True(t, e.MentionsYears("10 år"))
	assert.True(t, e.MentionsYears("8 ÅRS erfarenhet"))
	assert.False(t, e.MentionsYears("one year"))
	assert.False(t, e.MentionsYears("yearly reviews"))
	assert.False(t, e.MentionsYears("over a decade in retail"))
	assert.False(t, e.MentionsYears(""))
}

func TestParseDigits(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"\uff11\uff12", 12, false},
		{"\u0661\u0660", 10, false},
		{"\U0001D7D7", 9, false},
		{"99999999999999999999999", 0, true},
		{"1a", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDigits(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
