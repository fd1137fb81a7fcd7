package task

import "testing"

func TestValidateRepoURL(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		wantErr bool
	}{
		{"github repo", "https://github.com/acme/report", false},
		{"gitlab repo", "https://gitlab.com/acme/report", false},
		{"bitbucket repo", "https://bitbucket.org/acme/report", false},
		{"trailing slash", "https://github.com/acme/report/", false},
		{"dots and dashes", "https://github.com/acme-inc/report.v2", false},
		{"empty", "", true},
		{"plain http", "http://github.com/acme/report", true},
		{"no repo segment", "https://github.com/acme", true},
		{"wrong host", "https://example.com/acme/report", true},
		{"extra path", "https://github.com/acme/report/issues/1", true},
		{"not a url", "github.com/acme/report", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepoURL(tt.link)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateRepoURL(%q) = nil, want error", tt.link)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateRepoURL(%q) = %v, want nil", tt.link, err)
			}
		})
	}
}

func TestValidateScore(t *testing.T) {
	for _, score := range []float64{0, 50, 100, 99.5} {
		if err := ValidateScore(score); err != nil {
			t.Errorf("ValidateScore(%v) = %v, want nil", score, err)
		}
	}
	for _, score := range []float64{-0.1, 100.1, -50, 1000} {
		if err := ValidateScore(score); err == nil {
			t.Errorf("ValidateScore(%v) = nil, want error", score)
		}
	}
}
