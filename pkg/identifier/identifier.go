// Package identifier produces and parses the two identifier families used for
// routing: opaque tenant ids and structured principal ids. It is pure and
// stateless; nothing here touches storage.
package identifier

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/openfleet/fleettenant/pkg/domain"
)

const (
	tenantIDPrefix = "C"
	tenantCodeLen  = 3
	tenantCodePad  = 'X'

	roleTagOwner    = "OWN"
	roleTagEmployee = "EMP"
)

// Anchored grammars. Malformed input is rejected before any store lookup;
// there is no partial or substring acceptance.
var (
	tenantIDPattern    = regexp.MustCompile(`^C[0-9A-F]{8}$`)
	principalIDPattern = regexp.MustCompile(`^(OWN|EMP)-([A-Z]{3})-([0-9]{3,})$`)
	letterPattern      = regexp.MustCompile(`[A-Za-z]`)
)

// ParsedPrincipalID is the structured form of a principal identifier.
type ParsedPrincipalID struct {
	Role       domain.Role
	TenantCode string
	Seq        int
}

// NewTenantID allocates a fresh opaque tenant id: a constant prefix followed
// by eight uppercase hex characters of fresh random entropy. Fixed width and
// self-identifying, independent of the tenant's display name. Uniqueness is
// verified by the catalog, not assumed here.
func NewTenantID() string {
	u := uuid.New()
	return tenantIDPrefix + strings.ToUpper(hex.EncodeToString(u[:4]))
}

// ValidateTenantID checks s against the tenant id grammar.
func ValidateTenantID(s string) error {
	if !tenantIDPattern.MatchString(s) {
		return domain.ErrMalformedIdentifier
	}
	return nil
}

// TenantCode derives the three-letter routing hint from a display name:
// letters only, upper-cased, padded with X when shorter than three. The code
// is a hint, not a key; distinct tenants may share one.
func TenantCode(displayName string) string {
	letters := letterPattern.FindAllString(displayName, -1)
	code := strings.ToUpper(strings.Join(letters, ""))
	if len(code) > tenantCodeLen {
		code = code[:tenantCodeLen]
	}
	for len(code) < tenantCodeLen {
		code += string(tenantCodePad)
	}
	return code
}

// FormatPrincipalID builds a principal id of the form <ROLE>-<CODE>-<SEQ>,
// with the sequence zero-padded to three digits (widening past 999).
func FormatPrincipalID(role domain.Role, tenantCode string, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", roleTag(role), tenantCode, seq)
}

// ParsePrincipalID parses s against the exact principal id grammar. Any input
// that does not match returns ErrMalformedIdentifier.
func ParsePrincipalID(s string) (ParsedPrincipalID, error) {
	m := principalIDPattern.FindStringSubmatch(s)
	if m == nil {
		return ParsedPrincipalID{}, domain.ErrMalformedIdentifier
	}

	seq, err := strconv.Atoi(m[3])
	if err != nil || seq == 0 {
		return ParsedPrincipalID{}, domain.ErrMalformedIdentifier
	}

	return ParsedPrincipalID{
		Role:       tagRole(m[1]),
		TenantCode: m[2],
		Seq:        seq,
	}, nil
}

func roleTag(role domain.Role) string {
	if role == domain.RoleOwner {
		return roleTagOwner
	}
	return roleTagEmployee
}

func tagRole(tag string) domain.Role {
	if tag == roleTagOwner {
		return domain.RoleOwner
	}
	return domain.RoleEmployee
}
