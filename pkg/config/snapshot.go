package config

import "time"

// CredentialSnapshot is one set of short-lived cloud credentials returned by
// the verification endpoint. Snapshots are immutable: a refresh installs a
// new value in the Cell and the previous one becomes garbage once all
// in-flight writers drop it.
type CredentialSnapshot struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string

	// Hash routes records to the right log group and stream on the backend.
	Hash string

	// ExpirationUTC is the absolute instant the credentials stop working.
	// Always in UTC; see credentials.ParseExpiration for the parsing rules.
	ExpirationUTC time.Time

	// OtlpEndpoint is the telemetry ingestion URL paired with this
	// credential set.
	OtlpEndpoint string
}

// ExpiresWithin reports whether the snapshot expires within the given window
// measured from now. The boundary counts as expiring.
func (s *CredentialSnapshot) ExpiresWithin(now time.Time, window time.Duration) bool {
	return !now.Before(s.ExpirationUTC.Add(-window))
}
