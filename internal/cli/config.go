package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL     string
	ParticipantID string
	IdentityFile  string
	Output        string
	Verbose       bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:     getEnvOrDefault("SVP_SERVER", "http://localhost:8080"),
		ParticipantID: os.Getenv("SVP_PARTICIPANT_ID"),
		IdentityFile:  getEnvOrDefault("SVP_IDENTITY_FILE", defaultIdentityFile()),
		Output:        "text",
		Verbose:       false,
	}
}

// LoadIdentity loads the participant id from file if not already set
func (c *Config) LoadIdentity() error {
	if c.ParticipantID != "" {
		return nil
	}

	data, err := os.ReadFile(c.IdentityFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No identity file is fine
		}
		return err
	}

	c.ParticipantID = strings.TrimSpace(string(data))
	return nil
}

// SaveIdentity saves the participant id to the identity file
func (c *Config) SaveIdentity(participantID string) error {
	c.ParticipantID = participantID

	dir := filepath.Dir(c.IdentityFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.IdentityFile, []byte(participantID), 0600)
}

func defaultIdentityFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".svpcli/participant"
	}
	return filepath.Join(home, ".svpcli", "participant")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
