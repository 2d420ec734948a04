package identifier

import (
	"testing"

	"github.com/openfleet/fleettenant/pkg/domain"
)

func TestNewTenantID_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTenantID()
		if err := ValidateTenantID(id); err != nil {
			t.Fatalf("NewTenantID() = %q, failed validation: %v", id, err)
		}
		if len(id) != 9 {
			t.Fatalf("NewTenantID() = %q, want fixed width 9", id)
		}
		if seen[id] {
			t.Fatalf("NewTenantID() repeated %q within 100 allocations", id)
		}
		seen[id] = true
	}
}

func TestValidateTenantID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "C1A2B3C4", false},
		{"too long", "C1A2B3C4D", true},
		{"lowercase hex", "c1a2b3c4", true},
		{"missing prefix", "1A2B3C4D", true},
		{"wrong prefix", "X1A2B3C4", true},
		{"too short", "C1A2B3C", true},
		{"non-hex chars", "C1A2B3CZ", true},
		{"empty", "", true},
		{"embedded valid", "xC1A2B3C4x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTenantID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTenantID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestTenantCode(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		want        string
	}{
		{"long name", "Acme Logistics", "ACM"},
		{"different code", "Acer Transport", "ACE"},
		{"digits skipped", "A1 Cargo", "ACA"},
		{"short name padded", "Ox", "OXX"},
		{"single letter", "q", "QXX"},
		{"empty", "", "XXX"},
		{"punctuation only", "42!", "XXX"},
		{"already upper", "FLEETCO", "FLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TenantCode(tt.displayName); got != tt.want {
				t.Errorf("TenantCode(%q) = %q, want %q", tt.displayName, got, tt.want)
			}
		})
	}
}

func TestFormatPrincipalID(t *testing.T) {
	tests := []struct {
		name string
		role domain.Role
		code string
		seq  int
		want string
	}{
		{"owner", domain.RoleOwner, "ACM", 1, "OWN-ACM-001"},
		{"employee", domain.RoleEmployee, "ACM", 42, "EMP-ACM-042"},
		{"wide sequence", domain.RoleEmployee, "ACE", 1000, "EMP-ACE-1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPrincipalID(tt.role, tt.code, tt.seq); got != tt.want {
				t.Errorf("FormatPrincipalID(%v, %q, %d) = %q, want %q", tt.role, tt.code, tt.seq, got, tt.want)
			}
		})
	}
}

func TestParsePrincipalID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    ParsedPrincipalID
		wantErr bool
	}{
		{
			name: "owner",
			id:   "OWN-ACM-001",
			want: ParsedPrincipalID{Role: domain.RoleOwner, TenantCode: "ACM", Seq: 1},
		},
		{
			name: "employee",
			id:   "EMP-ACM-042",
			want: ParsedPrincipalID{Role: domain.RoleEmployee, TenantCode: "ACM", Seq: 42},
		},
		{
			name: "wide sequence",
			id:   "EMP-ACE-1000",
			want: ParsedPrincipalID{Role: domain.RoleEmployee, TenantCode: "ACE", Seq: 1000},
		},
		{name: "empty", id: "", wantErr: true},
		{name: "unknown role tag", id: "ADM-ACM-001", wantErr: true},
		{name: "lowercase", id: "own-acm-001", wantErr: true},
		{name: "code too short", id: "OWN-AC-001", wantErr: true},
		{name: "code too long", id: "OWN-ACME-001", wantErr: true},
		{name: "digit in code", id: "OWN-AC1-001", wantErr: true},
		{name: "sequence too short", id: "OWN-ACM-01", wantErr: true},
		{name: "sequence zero", id: "OWN-ACM-000", wantErr: true},
		{name: "missing sequence", id: "OWN-ACM", wantErr: true},
		{name: "leading junk", id: "XOWN-ACM-001", wantErr: true},
		{name: "trailing junk", id: "OWN-ACM-001X", wantErr: true},
		{name: "trailing space", id: "OWN-ACM-001 ", wantErr: true},
		{name: "substring only", id: "prefix OWN-ACM-001 suffix", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrincipalID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrincipalID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if tt.wantErr {
				if err != domain.ErrMalformedIdentifier {
					t.Errorf("ParsePrincipalID(%q) error = %v, want ErrMalformedIdentifier", tt.id, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParsePrincipalID(%q) = %+v, want %+v", tt.id, got, tt.want)
			}
		})
	}
}
