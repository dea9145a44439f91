package domain

import "strings"

// ParseCities turns the city form values of a listing into its canonical ordered set of names.
// Each value is either one name or a comma-joined list of names.
func ParseCities(values []string) ([]string, error) {
	seen := make(map[string]struct{})
	cities := make([]string, 0, len(values))

	for _, v := range values {
		if strings.ContainsAny(v, `[]{}"`) {
			return nil, NewError(ErrValidation, "City must be a name or a comma-separated list of names")
		}
		for _, part := range strings.Split(v, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			cities = append(cities, name)
		}
	}

	if len(cities) == 0 {
		return nil, NewError(ErrValidation, "Please provide the city")
	}
	return cities, nil
}

// SameCities reports whether a and b hold the same names in the same order.
func SameCities(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
