package domain

import "errors"

// Routing and authentication errors
var (
	ErrMalformedIdentifier  = errors.New("malformed identifier")
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrPrincipalNotFound    = errors.New("principal not found")
	ErrCredentialMismatch   = errors.New("credential mismatch")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// Provisioning errors
var (
	ErrDuplicateTenantID  = errors.New("duplicate tenant id")
	ErrProvisioningFailed = errors.New("provisioning failed")
)
