package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"academic", []string{"/in/Deep_Learning_Paper.pdf"}, "PhD Researcher"},
		{"business", []string{"globex-annual-2023.pdf"}, "Investment Analyst"},
		{"education", []string{"Organic Chemistry ch1.pdf"}, "Graduate Student"},
		{"guide matches education first", []string{"city guide.pdf"}, "Graduate Student"},
		{"travel", []string{"South of France - Hotels.pdf"}, "Travel Planner"},
		{"food", []string{"Dinner Ideas - Sides.pdf"}, "Food Contractor"},
		{"technical", []string{"Acrobat Manual.pdf"}, "Software Developer"},
		{"fallback", []string{"misc.pdf"}, "Business Analyst"},
		{"empty", nil, "Business Analyst"},
		{"rule order beats file order", []string{"recipes.pdf", "research notes.pdf"}, "PhD Researcher"},
		{"directories ignored", []string{"/data/research/misc.pdf"}, "Business Analyst"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.files).Persona)
		})
	}
}

func TestResolve(t *testing.T) {
	files := []string{"hotel list.pdf"}

	p := Resolve(files, "", "")
	assert.Equal(t, Infer(files), p)

	p = Resolve(files, "Event Organiser", "")
	assert.Equal(t, "Event Organiser", p.Persona)
	assert.Equal(t, Infer(files).Job, p.Job)

	p = Resolve(files, "", "Book a venue")
	assert.Equal(t, "Travel Planner", p.Persona)
	assert.Equal(t, "Book a venue", p.Job)
}
