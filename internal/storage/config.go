package storage

import "time"

// Config holds storage configuration
type Config struct {
	Type                string // "local" or "s3"
	LocalDir            string // Root directory for local storage
	BaseURL             string // Public base URL used to build local download links
	PresignedExpiration string // e.g., "15m"

	S3Bucket          string
	S3Region          string
	S3Endpoint        string // Optional, for S3-compatible stores
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Expiration parses PresignedExpiration, falling back to 15 minutes.
func (c Config) Expiration() time.Duration {
	d, err := time.ParseDuration(c.PresignedExpiration)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}
