package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/dbvault/pkg/logging"
	"github.com/doodlesbykumbi/dbvault/pkg/resolver"
	"github.com/doodlesbykumbi/dbvault/pkg/retention"
	"github.com/doodlesbykumbi/dbvault/pkg/scope"
	"github.com/doodlesbykumbi/dbvault/pkg/vault"
)

const (
	DefaultConfigPath = "/etc/dbvault"
	ConfigFileName    = "dbvault.yml"
	DefaultVaultPath  = "/etc/dbvault/vault.enc"
	DefaultBackupRoot = "/var/backups/db"
)

// Attribute sources.
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

const masked = "********"

// VaultConfig locates the encrypted vault and the host identity it is bound to.
type VaultConfig struct {
	Path string `yaml:"path" json:"path" validate:"required"`
	// HostIdentity overrides the hostname used for key derivation.
	HostIdentity string `yaml:"host_identity" json:"host_identity"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled off"`
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=console json"`
}

// RetentionConfig holds the per-tier keep counts.
type RetentionConfig struct {
	DailyKeep   int `yaml:"daily_keep" json:"daily_keep" validate:"gte=0"`
	WeeklyKeep  int `yaml:"weekly_keep" json:"weekly_keep" validate:"gte=0"`
	MonthlyKeep int `yaml:"monthly_keep" json:"monthly_keep" validate:"gte=0"`
}

// SMTPConfig is the mail transport. User and Password are legacy plaintext
// credentials consulted when the vault has no "smtp" entry.
type SMTPConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port" validate:"omitempty,min=1,max=65535"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"-"`
}

// Instance is a database server to back up. User and Password are legacy
// plaintext credentials consulted when the vault has no "db_<id>" entry.
type Instance struct {
	ID       string `yaml:"id" json:"id" validate:"required,excludesall=/\\"`
	Type     string `yaml:"type" json:"type" validate:"omitempty,oneof=mysql mariadb postgres postgresql"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port" validate:"omitempty,min=1,max=65535"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"-"`
	// Databases is the whitelist; empty means every database.
	Databases []string `yaml:"database" json:"database"`
	// DBIgnore is the blacklist.
	DBIgnore []string `yaml:"db_ignore" json:"db_ignore"`
	// SystemExclusions adds to scope.DefaultSystemExclusions.
	SystemExclusions []string `yaml:"system_exclusions" json:"system_exclusions"`
}

// Config holds all dbvault configuration settings.
type Config struct {
	Vault     VaultConfig     `yaml:"vault" json:"vault"`
	Log       LogConfig       `yaml:"log" json:"log"`
	Retention RetentionConfig `yaml:"retention" json:"retention"`

	// BackupRoot is the directory holding <instance>/<database>/<artifact>.
	BackupRoot string `yaml:"backup_root" json:"backup_root"`

	// AuditDatabaseURL enables the Postgres audit store when set.
	AuditDatabaseURL string `yaml:"audit_database_url" json:"-"`

	SMTP      SMTPConfig `yaml:"smtp" json:"smtp"`
	Instances []Instance `yaml:"instances" json:"instances" validate:"unique=ID,dive"`

	// sources tracks where each value came from
	sources map[string]string

	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// fileRetention keeps explicit zeros in the file apart from absent keys.
type fileRetention struct {
	DailyKeep   *int `yaml:"daily_keep"`
	WeeklyKeep  *int `yaml:"weekly_keep"`
	MonthlyKeep *int `yaml:"monthly_keep"`
}

type fileConfig struct {
	Vault            VaultConfig   `yaml:"vault"`
	Log              LogConfig     `yaml:"log"`
	Retention        fileRetention `yaml:"retention"`
	BackupRoot       string        `yaml:"backup_root"`
	AuditDatabaseURL string        `yaml:"audit_database_url"`
	SMTP             SMTPConfig    `yaml:"smtp"`
	Instances        []Instance    `yaml:"instances"`
}

func newDefault() *Config {
	return &Config{
		Vault: VaultConfig{Path: DefaultVaultPath},
		Log:   LogConfig{Level: "info", Format: "console"},
		Retention: RetentionConfig{
			DailyKeep:   7,
			WeeklyKeep:  4,
			MonthlyKeep: 12,
		},
		BackupRoot: DefaultBackupRoot,
		sources:    make(map[string]string),
	}
}

// Load reads dbvault.yml from $DBVAULT_CONFIG_PATH (default /etc/dbvault)
// and applies environment overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("DBVAULT_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return LoadFrom(filepath.Join(configPath, ConfigFileName))
}

// LoadFrom reads the config file at path and applies environment overrides.
// Environment variables take precedence over file values. A missing file
// leaves the defaults in place.
func LoadFrom(path string) (*Config, error) {
	config := newDefault()
	config.configFilePath = path

	for _, name := range attributeNames() {
		config.sources[name] = SourceDefault
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config file %s: %v", vault.ErrValidation, path, err)
		}
		config.applyFileConfig(&file)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("%w: reading config file %s: %v", vault.ErrIO, path, err)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}
	return config, nil
}

func attributeNames() []string {
	return []string{
		"vault.path", "vault.host_identity",
		"log.level", "log.format",
		"retention.daily_keep", "retention.weekly_keep", "retention.monthly_keep",
		"backup_root", "audit_database_url",
		"smtp.host", "smtp.port", "smtp.user", "smtp.password",
		"instances",
	}
}

func (c *Config) set(name, source string) {
	c.sources[name] = source
}

func (c *Config) applyFileConfig(file *fileConfig) {
	if file.Vault.Path != "" {
		c.Vault.Path = file.Vault.Path
		c.set("vault.path", SourceFile)
	}
	if file.Vault.HostIdentity != "" {
		c.Vault.HostIdentity = file.Vault.HostIdentity
		c.set("vault.host_identity", SourceFile)
	}
	if file.Log.Level != "" {
		c.Log.Level = file.Log.Level
		c.set("log.level", SourceFile)
	}
	if file.Log.Format != "" {
		c.Log.Format = file.Log.Format
		c.set("log.format", SourceFile)
	}
	if file.Retention.DailyKeep != nil {
		c.Retention.DailyKeep = *file.Retention.DailyKeep
		c.set("retention.daily_keep", SourceFile)
	}
	if file.Retention.WeeklyKeep != nil {
		c.Retention.WeeklyKeep = *file.Retention.WeeklyKeep
		c.set("retention.weekly_keep", SourceFile)
	}
	if file.Retention.MonthlyKeep != nil {
		c.Retention.MonthlyKeep = *file.Retention.MonthlyKeep
		c.set("retention.monthly_keep", SourceFile)
	}
	if file.BackupRoot != "" {
		c.BackupRoot = file.BackupRoot
		c.set("backup_root", SourceFile)
	}
	if file.AuditDatabaseURL != "" {
		c.AuditDatabaseURL = file.AuditDatabaseURL
		c.set("audit_database_url", SourceFile)
	}
	if file.SMTP.Host != "" {
		c.SMTP.Host = file.SMTP.Host
		c.set("smtp.host", SourceFile)
	}
	if file.SMTP.Port != 0 {
		c.SMTP.Port = file.SMTP.Port
		c.set("smtp.port", SourceFile)
	}
	if file.SMTP.User != "" {
		c.SMTP.User = file.SMTP.User
		c.set("smtp.user", SourceFile)
	}
	if file.SMTP.Password != "" {
		c.SMTP.Password = file.SMTP.Password
		c.set("smtp.password", SourceFile)
	}
	if len(file.Instances) > 0 {
		c.Instances = file.Instances
		c.set("instances", SourceFile)
	}
}

func (c *Config) applyEnvConfig() error {
	if val := os.Getenv("DBVAULT_VAULT_PATH"); val != "" {
		c.Vault.Path = val
		c.set("vault.path", SourceEnvironment)
	}
	if val := os.Getenv("DBVAULT_HOST_IDENTITY"); val != "" {
		c.Vault.HostIdentity = val
		c.set("vault.host_identity", SourceEnvironment)
	}
	if val := os.Getenv("DBVAULT_LOG_LEVEL"); val != "" {
		c.Log.Level = val
		c.set("log.level", SourceEnvironment)
	}
	if val := os.Getenv("DBVAULT_LOG_FORMAT"); val != "" {
		c.Log.Format = val
		c.set("log.format", SourceEnvironment)
	}
	if val := os.Getenv("DBVAULT_BACKUP_ROOT"); val != "" {
		c.BackupRoot = val
		c.set("backup_root", SourceEnvironment)
	}
	if val := os.Getenv("AUDIT_DATABASE_URL"); val != "" {
		c.AuditDatabaseURL = val
		c.set("audit_database_url", SourceEnvironment)
	}

	counts := []struct {
		env, name string
		dst       *int
	}{
		{"DBVAULT_RETENTION_DAILY", "retention.daily_keep", &c.Retention.DailyKeep},
		{"DBVAULT_RETENTION_WEEKLY", "retention.weekly_keep", &c.Retention.WeeklyKeep},
		{"DBVAULT_RETENTION_MONTHLY", "retention.monthly_keep", &c.Retention.MonthlyKeep},
	}
	for _, count := range counts {
		val := os.Getenv(count.env)
		if val == "" {
			continue
		}
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", vault.ErrValidation, count.env, val)
		}
		*count.dst = i
		c.set(count.name, SourceEnvironment)
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the configuration
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", vault.ErrValidation, err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: invalid configuration: %s", vault.ErrValidation, strings.Join(problems, "; "))
}

// describe never includes the offending value: it may be a password.
func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "unique":
		return fmt.Sprintf("%s must not repeat %s", field, strings.ToLower(fe.Param()))
	case "excludesall":
		return field + " must not contain path separators"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// Instance returns the configured instance with id.
func (c *Config) Instance(id string) (Instance, bool) {
	for _, instance := range c.Instances {
		if instance.ID == id {
			return instance, true
		}
	}
	return Instance{}, false
}

// LegacyCredentials returns the plaintext credentials of the config file,
// keyed the way the vault keys them. Entries without a password are left
// out.
func (c *Config) LegacyCredentials() resolver.LegacyMap {
	creds := resolver.LegacyMap{}
	for _, instance := range c.Instances {
		if instance.Password == "" {
			continue
		}
		creds[resolver.DatabaseKey(instance.ID)] = resolver.Credential{
			Username: instance.User,
			Secret:   instance.Password,
		}
	}
	if c.SMTP.Password != "" {
		creds[resolver.SMTPKey] = resolver.Credential{
			Username: c.SMTP.User,
			Secret:   c.SMTP.Password,
		}
	}
	return creds
}

// ScopeRule returns the database scope rule of instance id.
func (c *Config) ScopeRule(id string) (scope.Rule, error) {
	instance, ok := c.Instance(id)
	if !ok {
		return scope.Rule{}, fmt.Errorf("%w: instance %q is not configured", vault.ErrNotFound, id)
	}
	return scope.NewRule(instance.ID, instance.Databases, instance.DBIgnore, instance.SystemExclusions), nil
}

// RetentionPolicy returns the configured GFS keep counts.
func (c *Config) RetentionPolicy() (retention.Policy, error) {
	return retention.PolicyFromCounts(c.Retention.DailyKeep, c.Retention.WeeklyKeep, c.Retention.MonthlyKeep)
}

// Attributes returns all configuration attributes with their values and
// sources. Secrets are masked.
func (c *Config) Attributes() []Attribute {
	instanceIDs := make([]string, 0, len(c.Instances))
	for _, instance := range c.Instances {
		instanceIDs = append(instanceIDs, instance.ID)
	}
	smtpPort := ""
	if c.SMTP.Port != 0 {
		smtpPort = strconv.Itoa(c.SMTP.Port)
	}

	return []Attribute{
		{Name: "vault.path", Value: c.Vault.Path, Source: c.Source("vault.path")},
		{Name: "vault.host_identity", Value: c.Vault.HostIdentity, Source: c.Source("vault.host_identity")},
		{Name: "log.level", Value: c.Log.Level, Source: c.Source("log.level")},
		{Name: "log.format", Value: c.Log.Format, Source: c.Source("log.format")},
		{Name: "retention.daily_keep", Value: strconv.Itoa(c.Retention.DailyKeep), Source: c.Source("retention.daily_keep")},
		{Name: "retention.weekly_keep", Value: strconv.Itoa(c.Retention.WeeklyKeep), Source: c.Source("retention.weekly_keep")},
		{Name: "retention.monthly_keep", Value: strconv.Itoa(c.Retention.MonthlyKeep), Source: c.Source("retention.monthly_keep")},
		{Name: "backup_root", Value: c.BackupRoot, Source: c.Source("backup_root")},
		{Name: "audit_database_url", Value: mask(c.AuditDatabaseURL), Source: c.Source("audit_database_url")},
		{Name: "smtp.host", Value: c.SMTP.Host, Source: c.Source("smtp.host")},
		{Name: "smtp.port", Value: smtpPort, Source: c.Source("smtp.port")},
		{Name: "smtp.user", Value: c.SMTP.User, Source: c.Source("smtp.user")},
		{Name: "smtp.password", Value: mask(c.SMTP.Password), Source: c.Source("smtp.password")},
		{Name: "instances", Value: strings.Join(instanceIDs, ","), Source: c.Source("instances")},
	}
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return masked
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-28s %-36s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-28s %-36s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-28s %-36s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
