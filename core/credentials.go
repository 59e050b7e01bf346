package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrNoCredentials = errors.New("no stored credentials")

// Credentials is what a password login leaves behind for the next start.
type Credentials struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken"`
	DeviceID    string `json:"deviceId,omitempty"`
}

// LoadCredentials reads the credentials file. A missing file yields ErrNoCredentials.
func LoadCredentials(file string) (*Credentials, error) {
	raw, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds := &Credentials{}
	if err := json.Unmarshal(raw, creds); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", file, err)
	}
	if creds.AccessToken == "" {
		return nil, ErrNoCredentials
	}
	return creds, nil
}

func SaveCredentials(file string, creds *Credentials) error {
	raw, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, raw, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
