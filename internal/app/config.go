package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/claimintake-backend/internal/clients/gcs"
	"github.com/yungbote/claimintake-backend/internal/mail"
	"github.com/yungbote/claimintake-backend/internal/pkg/envutil"
	"github.com/yungbote/claimintake-backend/internal/records"
	"github.com/yungbote/claimintake-backend/internal/services"
)

// Config is built once at startup and handed to each constructor.
// Business logic never reads the environment directly.
type Config struct {
	Port           string
	LogMode        string
	AllowOrigins   []string
	NotifyOverride string

	Airtable records.AirtableConfig
	Tables   services.TableConfig
	Storage  gcs.Config
	SendGrid mail.SendGridConfig
	SMTP     mail.SMTPConfig
}

// fileConfig is the optional YAML overlay (CONFIG_PATH), mainly used to
// override table and field names without a redeploy. ${VAR} references
// are expanded before parsing.
type fileConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
	Tables       struct {
		Claims        tableOverride `yaml:"claims"`
		Categories    tableOverride `yaml:"categories"`
		Applicants    tableOverride `yaml:"applicants"`
		Subscriptions tableOverride `yaml:"subscriptions"`
	} `yaml:"tables"`
}

type tableOverride struct {
	Name   string            `yaml:"name"`
	Fields map[string]string `yaml:"fields"`
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Port:           envutil.String("PORT", "8080"),
		LogMode:        envutil.String("LOG_MODE", "development"),
		AllowOrigins:   splitAndTrim(os.Getenv("ALLOW_ORIGINS")),
		NotifyOverride: strings.TrimSpace(os.Getenv("NOTIFY_OVERRIDE_EMAIL")),

		Airtable: records.AirtableConfig{
			APIKey:  strings.TrimSpace(os.Getenv("AIRTABLE_API_KEY")),
			BaseID:  strings.TrimSpace(os.Getenv("AIRTABLE_BASE_ID")),
			BaseURL: strings.TrimSpace(os.Getenv("AIRTABLE_BASE_URL")),
			Timeout: envutil.Duration("AIRTABLE_TIMEOUT", 30*time.Second),
		},
		Tables: services.DefaultTableConfig(),
		Storage: gcs.Config{
			Bucket:        strings.TrimSpace(os.Getenv("GCS_BUCKET_NAME")),
			PublicBaseURL: strings.TrimSpace(os.Getenv("OBJECT_STORAGE_PUBLIC_BASE_URL")),
			EmulatorHost:  strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")),
			Timeout:       envutil.Duration("STORAGE_TIMEOUT", 2*time.Minute),
		},
		SendGrid: mail.SendGridConfig{
			APIKey:    strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
			BaseURL:   strings.TrimSpace(os.Getenv("SENDGRID_BASE_URL")),
			FromEmail: strings.TrimSpace(os.Getenv("SENDGRID_FROM_EMAIL")),
			FromName:  strings.TrimSpace(os.Getenv("SENDGRID_FROM_NAME")),
			Timeout:   envutil.Duration("SENDGRID_TIMEOUT", 30*time.Second),
		},
		SMTP: mail.SMTPConfig{
			Host:      strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port:      envutil.Int("SMTP_PORT", 587),
			Username:  strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
			Password:  os.Getenv("SMTP_PASSWORD"),
			FromEmail: strings.TrimSpace(os.Getenv("SMTP_FROM_EMAIL")),
		},
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &fc); err != nil {
		return fmt.Errorf("parse config YAML %s: %w", path, err)
	}

	if len(fc.AllowOrigins) > 0 {
		c.AllowOrigins = fc.AllowOrigins
	}

	applyName(&c.Tables.ClaimsTable, fc.Tables.Claims.Name)
	applyField(fc.Tables.Claims.Fields, "identity", &c.Tables.ClaimIdentityField)
	applyField(fc.Tables.Claims.Fields, "class", &c.Tables.ClaimClassField)
	applyField(fc.Tables.Claims.Fields, "notes", &c.Tables.ClaimNotesField)
	applyField(fc.Tables.Claims.Fields, "attachments", &c.Tables.ClaimFilesField)

	applyName(&c.Tables.CategoriesTable, fc.Tables.Categories.Name)
	applyField(fc.Tables.Categories.Fields, "name", &c.Tables.CategoryNameField)

	applyName(&c.Tables.ApplicantsTable, fc.Tables.Applicants.Name)
	applyField(fc.Tables.Applicants.Fields, "identity", &c.Tables.ApplicantIdentityField)
	applyField(fc.Tables.Applicants.Fields, "class", &c.Tables.ApplicantClassField)

	applyName(&c.Tables.SubscriptionsTable, fc.Tables.Subscriptions.Name)
	applyField(fc.Tables.Subscriptions.Fields, "class_link", &c.Tables.SubscriptionLinkField)
	applyField(fc.Tables.Subscriptions.Fields, "class_name", &c.Tables.SubscriptionNameField)
	applyField(fc.Tables.Subscriptions.Fields, "recipients", &c.Tables.SubscriptionEmailField)

	return nil
}

func applyName(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func applyField(fields map[string]string, key string, dst *string) {
	if v, ok := fields[key]; ok {
		applyName(dst, v)
	}
}

func (c *Config) validate() error {
	if c.Airtable.APIKey == "" {
		return fmt.Errorf("missing AIRTABLE_API_KEY")
	}
	if c.Airtable.BaseID == "" {
		return fmt.Errorf("missing AIRTABLE_BASE_ID")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("missing GCS_BUCKET_NAME")
	}
	return nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
