package retention

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// artifactStampRgx matches the "_YYYYMMDD_HHMMSS" stamp the dump process
// puts in artifact names, e.g. "app_20260301_020000.sql.gz".
var artifactStampRgx = regexp.MustCompile(`_(\d{8})_(\d{6})(?:\.|$)`)

const stampLayout = "20060102150405"

// ParseTimestamp extracts the artifact timestamp from a file name.
func ParseTimestamp(name string, loc *time.Location) (time.Time, bool) {
	matches := artifactStampRgx.FindAllStringSubmatch(name, -1)
	if len(matches) == 0 {
		return time.Time{}, false
	}
	last := matches[len(matches)-1]
	t, err := time.ParseInLocation(stampLayout, last[1]+last[2], loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Scan lists artifacts stored as <root>/<instance>/<database>/<file>.
// Files without a parsable stamp are skipped. A missing root yields no
// artifacts.
func Scan(root string, loc *time.Location) ([]Artifact, error) {
	if loc == nil {
		loc = time.Local
	}

	instances, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup root: %w", err)
	}

	var artifacts []Artifact
	for _, instance := range instances {
		if !instance.IsDir() {
			continue
		}
		instanceDir := filepath.Join(root, instance.Name())
		databases, err := os.ReadDir(instanceDir)
		if err != nil {
			return nil, fmt.Errorf("reading instance directory: %w", err)
		}

		for _, database := range databases {
			if !database.IsDir() {
				continue
			}
			databaseDir := filepath.Join(instanceDir, database.Name())
			files, err := os.ReadDir(databaseDir)
			if err != nil {
				return nil, fmt.Errorf("reading database directory: %w", err)
			}

			for _, file := range files {
				if !file.Type().IsRegular() {
					continue
				}
				stamp, ok := ParseTimestamp(file.Name(), loc)
				if !ok {
					continue
				}
				artifacts = append(artifacts, Artifact{
					InstanceID:   instance.Name(),
					DatabaseName: database.Name(),
					Timestamp:    stamp,
					Path:         filepath.Join(databaseDir, file.Name()),
				})
			}
		}
	}
	return artifacts, nil
}
