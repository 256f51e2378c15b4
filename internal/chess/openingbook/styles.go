package openingbook

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

var (
	styleOnce    sync.Once
	styleCatalog *StyleCatalog
	styleErr     error
)

type StyleEntry struct {
	ECO string `json:"eco"`
}

// StyleGroup is a family of openings that share a character, such as gambits
// or flank openings.
type StyleGroup struct {
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
	Entries     []StyleEntry `json:"entries"`
}

type styleFile struct {
	Groups []StyleGroup `json:"groups"`
}

type StyleCatalog struct {
	groups []StyleGroup
	byKey  map[string]int
	byECO  map[string][]int
}

// DefaultStyles returns the embedded style groups.
func DefaultStyles() (*StyleCatalog, error) {
	styleOnce.Do(func() {
		f, err := dataFiles.Open("data/styles.json")
		if err != nil {
			styleErr = fmt.Errorf("open embedded styles: %w", err)
			return
		}
		defer f.Close()
		styleCatalog, styleErr = LoadStyles(f)
	})
	return styleCatalog, styleErr
}

func LoadStyles(r io.Reader) (*StyleCatalog, error) {
	var payload styleFile
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode style catalog: %w", err)
	}
	s := &StyleCatalog{
		groups: make([]StyleGroup, 0, len(payload.Groups)),
		byKey:  make(map[string]int, len(payload.Groups)),
		byECO:  make(map[string][]int),
	}
	for _, group := range payload.Groups {
		key := strings.TrimSpace(group.Key)
		if key == "" {
			return nil, fmt.Errorf("style catalog group missing key")
		}
		g := StyleGroup{
			Key:         key,
			Label:       strings.TrimSpace(group.Label),
			Description: strings.TrimSpace(group.Description),
		}
		idx := len(s.groups)
		for _, entry := range group.Entries {
			eco := normalizeECOCode(entry.ECO)
			if eco == "" {
				continue
			}
			g.Entries = append(g.Entries, StyleEntry{ECO: eco})
			s.byECO[eco] = append(s.byECO[eco], idx)
		}
		s.groups = append(s.groups, g)
		s.byKey[strings.ToLower(key)] = idx
	}
	return s, nil
}

func (s *StyleCatalog) Groups() []StyleGroup {
	if s == nil {
		return nil
	}
	out := make([]StyleGroup, len(s.groups))
	for i, g := range s.groups {
		out[i] = cloneGroup(g)
	}
	return out
}

func (s *StyleCatalog) FindByKey(key string) (StyleGroup, bool) {
	if s == nil {
		return StyleGroup{}, false
	}
	idx, ok := s.byKey[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return StyleGroup{}, false
	}
	return cloneGroup(s.groups[idx]), true
}

func (s *StyleCatalog) FindByECO(eco string) []StyleGroup {
	if s == nil {
		return nil
	}
	idxs := s.byECO[normalizeECOCode(eco)]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]StyleGroup, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, cloneGroup(s.groups[i]))
	}
	return out
}

func cloneGroup(g StyleGroup) StyleGroup {
	g.Entries = append([]StyleEntry(nil), g.Entries...)
	return g
}

func normalizeECOCode(code string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	var b strings.Builder
	for _, r := range trimmed {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
