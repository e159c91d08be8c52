package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Lllllllleong/suratflow/internal/attachment"
	"github.com/Lllllllleong/suratflow/internal/gcp"
)

// DuplicatePolicy selects which numbers must be unique.
type DuplicatePolicy string

const (
	// PolicyAgendaGlobal checks the agenda number across both collections
	// and leaves letter numbers unchecked.
	PolicyAgendaGlobal DuplicatePolicy = "agenda-global"
	// PolicyPerCollection checks letter and agenda number within the
	// record's own collection.
	PolicyPerCollection DuplicatePolicy = "per-collection"
)

// ParseDuplicatePolicy accepts the configured policy name.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAgendaGlobal:
		return PolicyAgendaGlobal, nil
	case PolicyPerCollection:
		return PolicyPerCollection, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q", s)
}

// Config is the runtime configuration shared by the API, the attachment
// guard and the CLI.
type Config struct {
	ProjectID          string
	FirestoreDatabase  string
	AttachmentBucket   string
	PublicBaseURL      string
	MaxFileSizeBytes   int64
	AttachmentRequired bool
	DuplicatePolicy    DuplicatePolicy
	CountersCollection string
	PegawaiCollection  string
	SessionSecret      string
	SessionTTL         time.Duration
	WorkflowLocation   string
	WorkflowID         string
}

// LoadConfig reads Config from the environment.
func LoadConfig() (*Config, error) {
	policy, err := ParseDuplicatePolicy(gcp.GetEnv("DUPLICATE_POLICY", string(PolicyAgendaGlobal)))
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		ProjectID:          gcp.GetEnv("PROJECT_ID", ""),
		FirestoreDatabase:  gcp.GetEnv("FIRESTORE_DATABASE", ""),
		AttachmentBucket:   gcp.GetEnv("ATTACHMENT_BUCKET", "surat_files"),
		PublicBaseURL:      gcp.GetEnv("PUBLIC_BASE_URL", "https://storage.googleapis.com"),
		MaxFileSizeBytes:   gcp.GetEnvInt64("MAX_FILE_SIZE_BYTES", attachment.DefaultMaxFileSize),
		AttachmentRequired: gcp.GetEnvBool("ATTACHMENT_REQUIRED", false),
		DuplicatePolicy:    policy,
		CountersCollection: gcp.GetEnv("COUNTERS_COLLECTION", "counters"),
		PegawaiCollection:  gcp.GetEnv("PEGAWAI_COLLECTION", "pegawai"),
		SessionSecret:      gcp.GetEnv("SESSION_SECRET", ""),
		SessionTTL:         time.Duration(gcp.GetEnvInt64("SESSION_TTL_HOURS", 24)) * time.Hour,
		WorkflowLocation:   gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
		WorkflowID:         gcp.GetEnv("WORKFLOW_ID", ""),
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if cfg.AttachmentBucket == "" {
		return nil, fmt.Errorf("ATTACHMENT_BUCKET environment variable must not be empty")
	}
	if cfg.MaxFileSizeBytes <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE_BYTES must be positive, got %d", cfg.MaxFileSizeBytes)
	}
	return cfg, nil
}

// NotificationsEnabled reports whether a workflow is configured.
func (c *Config) NotificationsEnabled() bool {
	return c.WorkflowID != ""
}
