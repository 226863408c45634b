package analytics

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ClassificationProfile names one ABC report configuration: the grouping
// dimension, the value field the classes are drawn on, and the cumulative
// thresholds. Profiles are loaded at startup from YAML files and
// fingerprinted so a report response can state exactly which configuration
// produced it.
type ClassificationProfile struct {
	Name        string
	Dimension   string
	ValueField  string
	Thresholds  Thresholds
	Fingerprint string // SHA-256 of the raw YAML file; empty for built-ins
}

// rawProfile is the on-disk YAML shape.
type rawProfile struct {
	Name       string `yaml:"name"`
	Dimension  string `yaml:"dimension"`
	ValueField string `yaml:"value_field"`
	AThreshold string `yaml:"a_threshold"`
	BThreshold string `yaml:"b_threshold"`
}

// ProfileRepository defines the interface for loading classification profiles.
type ProfileRepository interface {
	// Get returns the profile with the given name, or an error if not found.
	Get(ctx context.Context, name string) (*ClassificationProfile, error)

	// GetProfiles returns all loaded profiles.
	GetProfiles() []ClassificationProfile
}

// DefaultProfiles are the built-in report configurations: one classic 80/95
// revenue classification per dimension. Used when no profile directory is
// configured and as the base set the directory extends.
func DefaultProfiles() []ClassificationProfile {
	names := []string{DimCategory, DimSupplier, DimProduct}
	profiles := make([]ClassificationProfile, 0, len(names))
	for _, dim := range names {
		profiles = append(profiles, ClassificationProfile{
			Name:       "abc_" + dim,
			Dimension:  dim,
			ValueField: ValueRevenue,
			Thresholds: DefaultThresholds,
		})
	}
	return profiles
}

// FileSystemProfileRepository loads classification profiles from *.yaml files
// in a directory, on top of the built-in defaults. Each file contains exactly
// one profile. Profiles are loaded once at startup and cached in memory; no
// hot reload.
type FileSystemProfileRepository struct {
	dir      string
	profiles map[string]ClassificationProfile // keyed by Name
	ordered  []string                         // defaults first, then load order
}

// NewFileSystemProfileRepository creates a repository and eagerly loads all
// profiles from dir. Returns an error if any profile file is malformed or
// names an unknown dimension or value field.
func NewFileSystemProfileRepository(dir string) (*FileSystemProfileRepository, error) {
	repo := &FileSystemProfileRepository{
		dir:      dir,
		profiles: make(map[string]ClassificationProfile),
	}
	for _, p := range DefaultProfiles() {
		repo.profiles[p.Name] = p
		repo.ordered = append(repo.ordered, p.Name)
	}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *FileSystemProfileRepository) load() error {
	info, err := os.Stat(r.dir)
	if os.IsNotExist(err) {
		return nil // no profile directory, built-in defaults only
	}
	if err != nil {
		return fmt.Errorf("classification profile dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("classification profile path %q is not a directory", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("reading classification profile dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(r.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading profile file %s: %w", path, err)
		}

		var raw rawProfile
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing profile file %s: %w", path, err)
		}
		if raw.Name == "" {
			continue // skip empty / comment-only files
		}

		profile, err := buildProfile(raw)
		if err != nil {
			return fmt.Errorf("profile %q: %w", raw.Name, err)
		}
		profile.Fingerprint = fmt.Sprintf("%x", sha256.Sum256(data))

		if _, exists := r.profiles[profile.Name]; !exists {
			r.ordered = append(r.ordered, profile.Name)
		}
		// A file may override a built-in of the same name.
		r.profiles[profile.Name] = profile
	}

	return nil
}

func buildProfile(raw rawProfile) (ClassificationProfile, error) {
	if !ValidDimension(raw.Dimension) {
		return ClassificationProfile{}, fmt.Errorf("unknown dimension %q", raw.Dimension)
	}

	valueField := raw.ValueField
	if valueField == "" {
		valueField = ValueRevenue
	}
	if !ValidValueField(valueField) {
		return ClassificationProfile{}, fmt.Errorf("unknown value_field %q", raw.ValueField)
	}

	th := DefaultThresholds
	if raw.AThreshold != "" {
		a, err := decimal.NewFromString(raw.AThreshold)
		if err != nil {
			return ClassificationProfile{}, fmt.Errorf("invalid a_threshold %q", raw.AThreshold)
		}
		th.A = a
	}
	if raw.BThreshold != "" {
		b, err := decimal.NewFromString(raw.BThreshold)
		if err != nil {
			return ClassificationProfile{}, fmt.Errorf("invalid b_threshold %q", raw.BThreshold)
		}
		th.B = b
	}
	if err := validateThresholds(th); err != nil {
		return ClassificationProfile{}, err
	}

	return ClassificationProfile{
		Name:       raw.Name,
		Dimension:  raw.Dimension,
		ValueField: valueField,
		Thresholds: th,
	}, nil
}

func validateThresholds(th Thresholds) error {
	if !th.A.IsPositive() {
		return fmt.Errorf("a_threshold must be > 0")
	}
	if !th.B.GreaterThan(th.A) {
		return fmt.Errorf("b_threshold must be > a_threshold")
	}
	if th.B.GreaterThan(hundred) {
		return fmt.Errorf("b_threshold must be <= 100")
	}
	return nil
}

// Get returns the profile with the given name.
func (r *FileSystemProfileRepository) Get(_ context.Context, name string) (*ClassificationProfile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("classification profile %q not found", name)
	}
	return &p, nil
}

// GetProfiles returns all profiles: built-in defaults first, then directory
// profiles in load order.
func (r *FileSystemProfileRepository) GetProfiles() []ClassificationProfile {
	out := make([]ClassificationProfile, 0, len(r.ordered))
	for _, name := range r.ordered {
		out = append(out, r.profiles[name])
	}
	return out
}
