package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCities(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{name: "single", values: []string{"Dehradun"}, want: []string{"Dehradun"}},
		{name: "repeated field", values: []string{"Dehradun", "Haridwar"}, want: []string{"Dehradun", "Haridwar"}},
		{name: "comma joined", values: []string{"Dehradun, Haridwar"}, want: []string{"Dehradun", "Haridwar"}},
		{name: "mixed with duplicates", values: []string{"Dehradun,Haridwar", " Dehradun ", "Rishikesh"}, want: []string{"Dehradun", "Haridwar", "Rishikesh"}},
		{name: "empty parts dropped", values: []string{",Dehradun,,", ""}, want: []string{"Dehradun"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCities(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCitiesRejects(t *testing.T) {
	for _, values := range [][]string{
		nil,
		{" , "},
		{`["Dehradun","Haridwar"]`},
		{`{"city":"Dehradun"}`},
		{`"Dehradun"`},
	} {
		_, err := ParseCities(values)
		assert.ErrorIs(t, err, ErrValidation, "%q", values)
	}
}

func TestSameCities(t *testing.T) {
	assert.True(t, SameCities([]string{"A", "B"}, []string{"A", "B"}))
	assert.False(t, SameCities([]string{"A", "B"}, []string{"B", "A"}))
	assert.False(t, SameCities([]string{"A"}, []string{"A", "B"}))
}
