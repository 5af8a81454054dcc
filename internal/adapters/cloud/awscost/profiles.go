package awscost

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bnema/pulse/internal/domain"
)

const (
	sourceConfig      = "config"
	sourceCredentials = "credentials"
)

type iniSection struct {
	name   string
	values map[string]string
}

// readINI parses the shared config format. A missing file yields no sections.
func readINI(path string) ([]iniSection, error) {
	if path == "" {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var sections []iniSection
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.Join(strings.Fields(line[1:len(line)-1]), " ")
			sections = append(sections, iniSection{name: name, values: map[string]string{}})
			continue
		}
		if len(sections) == 0 {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		sections[len(sections)-1].values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return sections, nil
}

// loadProfiles merges the config and credentials files. The default profile
// sorts first, the rest by name.
func loadProfiles(configFile string, credentialsFile string) ([]domain.CloudProfile, error) {
	configSections, err := readINI(configFile)
	if err != nil {
		return nil, err
	}
	credentialSections, err := readINI(credentialsFile)
	if err != nil {
		return nil, err
	}

	byName := map[string]*domain.CloudProfile{}
	profile := func(name string) *domain.CloudProfile {
		if existing, ok := byName[name]; ok {
			return existing
		}
		created := &domain.CloudProfile{Name: name}
		byName[name] = created
		return created
	}

	for _, section := range configSections {
		name, ok := configProfileName(section.name)
		if !ok {
			continue
		}
		p := profile(name)
		p.Source = sourceConfig
		p.Region = section.values["region"]
		p.Output = section.values["output"]
		p.RoleARN = section.values["role_arn"]
		p.SourceProfile = section.values["source_profile"]
		if p.RoleARN != "" || section.values["sso_start_url"] != "" || section.values["sso_session"] != "" || section.values["credential_process"] != "" {
			p.HasCredentials = true
		}
	}

	for _, section := range credentialSections {
		p := profile(section.name)
		if p.Source == sourceConfig {
			p.Source = sourceConfig + "+" + sourceCredentials
		} else {
			p.Source = sourceCredentials
		}
		if keyID := section.values["aws_access_key_id"]; keyID != "" {
			p.HasCredentials = true
			p.AccessKeyHint = maskKey(keyID)
		}
		if p.Region == "" {
			p.Region = section.values["region"]
		}
	}

	profiles := make([]domain.CloudProfile, 0, len(byName))
	for _, p := range byName {
		profiles = append(profiles, *p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].Name == "default" || profiles[j].Name == "default" {
			return profiles[i].Name == "default"
		}
		return profiles[i].Name < profiles[j].Name
	})

	return profiles, nil
}

func configProfileName(section string) (string, bool) {
	if section == "default" {
		return section, true
	}
	if name, found := strings.CutPrefix(section, "profile "); found && name != "" {
		return name, true
	}
	return "", false
}

func maskKey(keyID string) string {
	if len(keyID) <= 8 {
		return keyID[:min(4, len(keyID))] + "..."
	}
	return keyID[:8] + "..."
}
