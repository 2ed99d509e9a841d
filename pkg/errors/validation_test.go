package errors

import (
	"strings"
	"testing"
)

func TestValidateServiceURL(t *testing.T) {
	valid := []string{
		"https://services.odata.org/V4/TripPinService",
		"http://localhost:8080/odata",
		"services.odata.org/V2/Northwind/Northwind.svc",
	}
	for _, url := range valid {
		if err := ValidateServiceURL(url); err != nil {
			t.Errorf("ValidateServiceURL(%q) = %v, want nil", url, err)
		}
	}

	invalid := []string{
		"",
		"ftp://example.com/svc",
		"https://example.com/\x00svc",
		"https://example.com/" + strings.Repeat("a", 2048),
	}
	for _, url := range invalid {
		if err := ValidateServiceURL(url); !Is(err, ErrCodeInvalidService) {
			t.Errorf("ValidateServiceURL(%q) = %v, want ErrCodeInvalidService", url, err)
		}
	}
}

func TestValidateEntitySetName(t *testing.T) {
	valid := []string{"Products", "order_details", "_Internal", "Set2"}
	for _, name := range valid {
		if err := ValidateEntitySetName(name); err != nil {
			t.Errorf("ValidateEntitySetName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "2Products", "Products/All", "My Set", strings.Repeat("a", 129)}
	for _, name := range invalid {
		if err := ValidateEntitySetName(name); !Is(err, ErrCodeInvalidEntitySet) {
			t.Errorf("ValidateEntitySetName(%q) = %v, want ErrCodeInvalidEntitySet", name, err)
		}
	}
}

func TestValidateProfileName(t *testing.T) {
	valid := []string{"default", "prod", "trippin-v4", "work.sap"}
	for _, name := range valid {
		if err := ValidateProfileName(name); err != nil {
			t.Errorf("ValidateProfileName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", ".hidden", "has space", "semi;colon", strings.Repeat("a", 65)}
	for _, name := range invalid {
		if err := ValidateProfileName(name); !Is(err, ErrCodeInvalidProfile) {
			t.Errorf("ValidateProfileName(%q) = %v, want ErrCodeInvalidProfile", name, err)
		}
	}
}

func TestValidateOutputPath(t *testing.T) {
	if err := ValidateOutputPath("out/diagram.svg"); err != nil {
		t.Errorf("ValidateOutputPath = %v, want nil", err)
	}
	if err := ValidateOutputPath(""); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("empty path: %v, want ErrCodeInvalidInput", err)
	}
	if err := ValidateOutputPath("bad\x00path"); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("null byte: %v, want ErrCodeInvalidInput", err)
	}
}
