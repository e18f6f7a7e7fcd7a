package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			URL:  "http://localhost:8080",
		},
		Storage: StorageConfig{
			Backend:       StorageBackendPostgres,
			LocalBlobPath: "inspections.json",
		},
		Database: DatabaseConfig{
			Host: "localhost",
			Name: "inspections",
		},
		Auth: AuthConfig{
			JWTSecret:       "0123456789abcdef0123456789abcdef",
			TokenExpiration: 24 * time.Hour,
		},
		Blob:   BlobConfig{Driver: "fs", FSRoot: "./photodata"},
		Photos: PhotoConfig{UploadPolicy: PhotoPolicyAbort},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, validConfig().validate())
}

func TestValidateRequiresJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = ""
	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.Auth.JWTSecret = "too-short"
	err = cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 characters")
}

func TestValidateRequiresDatabaseForPostgresBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	require.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.Database.Name = ""
	require.Error(t, cfg.validate())
}

func TestValidateLocalBlobBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = StorageBackendLocalBlob
	cfg.Database = DatabaseConfig{}
	cfg.Auth = AuthConfig{}
	require.NoError(t, cfg.validate(), "localblob backend must not require database or auth settings")

	cfg.Storage.LocalBlobPath = ""
	require.Error(t, cfg.validate())
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = "supabase"
	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BACKEND")
}

func TestValidateS3DriverRequiresBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Blob.Driver = "s3"
	require.Error(t, cfg.validate())

	cfg.Blob.S3Bucket = "inspection-photos"
	require.NoError(t, cfg.validate())
}

func TestValidateRejectsUnknownPhotoPolicy(t *testing.T) {
	cfg := validConfig()
	cfg.Photos.UploadPolicy = "retry"
	require.Error(t, cfg.validate())

	cfg.Photos.UploadPolicy = PhotoPolicySkip
	require.NoError(t, cfg.validate())
}
