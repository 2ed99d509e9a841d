package odata

import (
	"errors"
	"testing"

	"github.com/odex-dev/odex/pkg/edm"
)

func TestParseServiceURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain root",
			input: "https://services.odata.org/V4/TripPinService",
			want:  "https://services.odata.org/V4/TripPinService",
		},
		{
			name:  "trailing slash trimmed",
			input: "https://services.odata.org/V4/TripPinService/",
			want:  "https://services.odata.org/V4/TripPinService",
		},
		{
			name:  "metadata URL reduced to root",
			input: "https://services.odata.org/V4/TripPinService/$metadata",
			want:  "https://services.odata.org/V4/TripPinService",
		},
		{
			name:  "missing scheme defaults to https",
			input: "services.odata.org/V2/Northwind/Northwind.svc",
			want:  "https://services.odata.org/V2/Northwind/Northwind.svc",
		},
		{
			name:  "query and fragment dropped",
			input: "https://example.com/svc?sap-client=100#frag",
			want:  "https://example.com/svc",
		},
		{
			name:  "surrounding whitespace",
			input: "  https://example.com/svc  ",
			want:  "https://example.com/svc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := ParseServiceURL(tt.input)
			if err != nil {
				t.Fatalf("ParseServiceURL(%q) error: %v", tt.input, err)
			}
			if svc.Root != tt.want {
				t.Errorf("Root = %q, want %q", svc.Root, tt.want)
			}
		})
	}
}

func TestParseServiceURLErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "ftp://example.com/svc", "https://"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseServiceURL(input)
			if !errors.Is(err, ErrInvalidServiceURL) {
				t.Errorf("ParseServiceURL(%q) = %v, want ErrInvalidServiceURL", input, err)
			}
		})
	}
}

func TestServiceURLs(t *testing.T) {
	svc := Service{Root: "https://example.com/svc"}

	if got := svc.MetadataURL(); got != "https://example.com/svc/$metadata" {
		t.Errorf("MetadataURL() = %q", got)
	}
	if got := svc.CollectionURL("Products"); got != "https://example.com/svc/Products" {
		t.Errorf("CollectionURL() = %q", got)
	}
}

func TestServiceWithVersion(t *testing.T) {
	svc := Service{Root: "https://example.com/svc"}
	v4 := svc.WithVersion(edm.V4)

	if v4.Version != edm.V4 {
		t.Errorf("Version = %q, want %q", v4.Version, edm.V4)
	}
	if svc.Version != "" {
		t.Error("WithVersion mutated the receiver")
	}
}
