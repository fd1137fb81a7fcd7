package auth

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last+tag@sub.domain.org",
		"emp_01@company.ru",
	}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}

	invalid := []string{
		"",
		"plainaddress",
		"@no-local.com",
		"user@",
		"user@domain",
		"user @example.com",
	}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"letters and digits", "password1", false},
		{"mixed case", "Secret123", false},
		{"too short", "abc1", true},
		{"letters only", "passwordonly", true},
		{"digits only", "12345678", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr && err == nil {
				t.Errorf("ValidatePassword(%q) = nil, want error", tt.password)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidatePassword(%q) = %v, want nil", tt.password, err)
			}
		})
	}
}

func TestValidateEmployeeCode(t *testing.T) {
	for _, code := range []string{"EMP001", "EMP1234"} {
		if err := ValidateEmployeeCode(code); err != nil {
			t.Errorf("ValidateEmployeeCode(%q) = %v, want nil", code, err)
		}
	}
	for _, code := range []string{"", "EMP01", "emp001", "EMPLOYEE1", "001"} {
		if err := ValidateEmployeeCode(code); err == nil {
			t.Errorf("ValidateEmployeeCode(%q) = nil, want error", code)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world\n  "); got != "helloworld" {
		t.Errorf("SanitizeString() = %q", got)
	}
	if got := SanitizeString("Анна Иванова"); got != "Анна Иванова" {
		t.Errorf("SanitizeString() mangled unicode: %q", got)
	}
}
