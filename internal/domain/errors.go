package domain

import "errors"

var (
	// ErrProviderNotConfigured marks a request against a provider whose
	// credential is absent. Surfaced as a 500 with the explanatory detail.
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrUnsupportedProvider marks a provider key outside the registry.
	ErrUnsupportedProvider = errors.New("unsupported provider")
)
