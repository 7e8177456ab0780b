// Package provider defines the translation provider interface and implementations.
package provider

import "github.com/ZaguanLabs/mailtl"

// Provider is an alias to the main package interface for convenience.
type Provider = mailtl.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = mailtl.TranslateRequest
