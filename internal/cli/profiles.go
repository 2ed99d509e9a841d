package cli

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	oerrors "github.com/odex-dev/odex/pkg/errors"
)

// profilesFile is the profiles filename inside the config directory.
const profilesFile = "profiles.toml"

// Profile is a named service configured in profiles.toml.
type Profile struct {
	URL  string `toml:"url"`
	Name string `toml:"name,omitempty"`
}

// Profiles is the parsed profiles.toml.
//
// Example file:
//
//	[services.trippin]
//	url = "https://services.odata.org/V4/TripPinService"
//	name = "TripPin reference service"
//
//	[services.northwind]
//	url = "https://services.odata.org/V2/Northwind/Northwind.svc"
type Profiles struct {
	Services map[string]Profile `toml:"services"`
}

// Lookup finds a profile by name.
func (p *Profiles) Lookup(name string) (Profile, bool) {
	prof, ok := p.Services[name]
	return prof, ok
}

// Names returns profile names in sorted order.
func (p *Profiles) Names() []string {
	return slices.Sorted(maps.Keys(p.Services))
}

// profilesPath returns the full path of profiles.toml.
func profilesPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, profilesFile), nil
}

// loadProfiles reads profiles.toml. A missing file yields an empty set, not
// an error.
func loadProfiles() (*Profiles, error) {
	path, err := profilesPath()
	if err != nil {
		return nil, err
	}

	profiles := &Profiles{Services: map[string]Profile{}}
	if _, err := toml.DecodeFile(path, profiles); err != nil {
		if os.IsNotExist(err) {
			return profiles, nil
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if profiles.Services == nil {
		profiles.Services = map[string]Profile{}
	}
	return profiles, nil
}

// saveProfiles writes profiles.toml, creating the config directory if needed.
func saveProfiles(profiles *Profiles) error {
	path, err := profilesPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(profiles)
}

// addProfile validates and registers a named service.
func addProfile(name, url, label string) error {
	if err := oerrors.ValidateProfileName(name); err != nil {
		return err
	}
	if err := oerrors.ValidateServiceURL(url); err != nil {
		return err
	}

	profiles, err := loadProfiles()
	if err != nil {
		return err
	}
	profiles.Services[name] = Profile{URL: url, Name: label}
	return saveProfiles(profiles)
}

// removeProfile deletes a named service; unknown names are an error.
func removeProfile(name string) error {
	profiles, err := loadProfiles()
	if err != nil {
		return err
	}
	if _, ok := profiles.Services[name]; !ok {
		return oerrors.New(oerrors.ErrCodeServiceNotFound, "no profile named %q", name)
	}
	delete(profiles.Services, name)
	return saveProfiles(profiles)
}
