// Package gsc implements the Google Search Console and Indexing API client:
// service-account JWT authentication, the sitemap registry, throttled URL
// indexing notifications, and the sitemap refresh workflow.
package gsc

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServiceAccountKey is the subset of a Google service-account JSON key the
// client needs.
type ServiceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// Validate checks the key carries the required fields.
func (k ServiceAccountKey) Validate() error {
	if k.ClientEmail == "" {
		return fmt.Errorf("credential is missing client_email")
	}
	if k.PrivateKey == "" {
		return fmt.Errorf("credential is missing private_key")
	}
	return nil
}

// CredentialSource loads a service-account key. Implementations are
// injectable so tests never touch the environment.
type CredentialSource interface {
	Load() (ServiceAccountKey, error)
}

// FileCredentialSource reads the key from a local JSON file.
type FileCredentialSource struct {
	Path string
}

// Load parses the credential file.
func (s FileCredentialSource) Load() (ServiceAccountKey, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return ServiceAccountKey{}, fmt.Errorf("read credential file: %w", err)
	}
	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return ServiceAccountKey{}, fmt.Errorf("parse credential file: %w", err)
	}
	if err := key.Validate(); err != nil {
		return ServiceAccountKey{}, err
	}
	return key, nil
}

// StaticCredentialSource returns a fixed key (for tests).
type StaticCredentialSource struct {
	Key ServiceAccountKey
	Err error
}

// Load returns the fixed key or error.
func (s StaticCredentialSource) Load() (ServiceAccountKey, error) {
	if s.Err != nil {
		return ServiceAccountKey{}, s.Err
	}
	return s.Key, nil
}
