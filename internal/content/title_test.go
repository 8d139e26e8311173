package content

import (
	"sync"
	"testing"
)

func TestFormatTitle(t *testing.T) {
	tests := []struct {
		name string
		slug string
		want string
	}{
		{"simple", "neonatal-jaundice", "Neonatal Jaundice"},
		{"single-word", "anatomy", "Anatomy"},
		{"already-formatted", "Neonatal Jaundice", "Neonatal Jaundice"},
		{"acronym-preserved", "ECG-basics", "ECG Basics"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTitle(tt.slug); got != tt.want {
				t.Errorf("FormatTitle(%q) = %q, want %q", tt.slug, got, tt.want)
			}
		})
	}
}

// FormatTitle runs inside concurrent fetch goroutines; run it from many at
// once so the race detector can catch any shared transform state.
func TestFormatTitle_Concurrent(t *testing.T) {
	slugs := []string{"neonatal-jaundice", "heart-failure", "ECG-basics", "anatomy"}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				for _, slug := range slugs {
					if got := FormatTitle(slug); got == "" {
						t.Error("FormatTitle() returned empty string")
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	if got := FormatTitle("neonatal-jaundice"); got != "Neonatal Jaundice" {
		t.Errorf("FormatTitle() = %q after concurrent use, want %q", got, "Neonatal Jaundice")
	}
}

func TestFormatTitle_Idempotent(t *testing.T) {
	slugs := []string{"neonatal-jaundice", "year-one", "ECG-basics", "anatomy"}
	for _, slug := range slugs {
		once := FormatTitle(slug)
		twice := FormatTitle(once)
		if once != twice {
			t.Errorf("FormatTitle not idempotent for %q: %q != %q", slug, once, twice)
		}
	}
}
