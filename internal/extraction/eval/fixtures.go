package eval

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/castlemilk/cardkeeper/internal/mailbox"
)

//go:embed fixtures/*.eml fixtures/*.json
var fixtureFS embed.FS

// Fixture pairs a saved message with its expected extraction.
type Fixture struct {
	Name  string
	Raw   mailbox.RawMessage
	Truth GroundTruth
}

// LoadFixtures loads every embedded .eml file and the .json file of the same
// name, sorted by name.
func LoadFixtures() ([]*Fixture, error) {
	return LoadFixturesFS(fixtureFS, "fixtures")
}

// LoadFixturesFS loads fixture pairs from dir in fsys.
func LoadFixturesFS(fsys fs.FS, dir string) ([]*Fixture, error) {
	emls, err := fs.Glob(fsys, path.Join(dir, "*.eml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(emls)

	fixtures := make([]*Fixture, 0, len(emls))
	for _, p := range emls {
		name := strings.TrimSuffix(path.Base(p), ".eml")
		f, err := loadFixture(fsys, dir, name)
		if err != nil {
			return nil, fmt.Errorf("load fixture %q: %w", name, err)
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

func loadFixture(fsys fs.FS, dir, name string) (*Fixture, error) {
	body, err := fs.ReadFile(fsys, path.Join(dir, name+".eml"))
	if err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}
	jsonBytes, err := fs.ReadFile(fsys, path.Join(dir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("read ground truth: %w", err)
	}

	var gt GroundTruth
	if err := json.Unmarshal(jsonBytes, &gt); err != nil {
		return nil, fmt.Errorf("parse ground truth: %w", err)
	}

	return &Fixture{
		Name:  name,
		Raw:   mailbox.ParseRaw(body),
		Truth: gt,
	}, nil
}
