package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
)

// ErrInvalid wraps every validation failure of a catalog document.
var ErrInvalid = errors.New("invalid catalog")

// Document is the on-disk catalog. JSON documents parse as well, being
// valid YAML.
type Document struct {
	Version   int                 `yaml:"version"`
	Creatives []domain.CreativeAd `yaml:"creatives"`
	// AntiTargeting maps a creative set id to sites its ads must not follow.
	AntiTargeting map[string][]string `yaml:"anti_targeting"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	seen := make(map[string]bool, len(doc.Creatives))
	for i, c := range doc.Creatives {
		if err := validate(c); err != nil {
			return Document{}, fmt.Errorf("%w: creative %d: %v", ErrInvalid, i, err)
		}
		if seen[c.CreativeInstanceID] {
			return Document{}, fmt.Errorf("%w: duplicate creative_instance_id %s", ErrInvalid, c.CreativeInstanceID)
		}
		seen[c.CreativeInstanceID] = true
	}
	return doc, nil
}

func validate(c domain.CreativeAd) error {
	switch {
	case c.CreativeInstanceID == "":
		return errors.New("missing creative_instance_id")
	case c.CreativeSetID == "":
		return errors.New("missing creative_set_id")
	case c.CampaignID == "":
		return errors.New("missing campaign_id")
	case c.Priority < 0:
		return errors.New("negative priority")
	case c.PassThroughRate < 0 || c.PassThroughRate > 1:
		return errors.New("pass_through_rate out of range")
	case !c.EndAt.After(c.StartAt):
		return errors.New("end_at must be after start_at")
	}
	for _, d := range c.Dayparts {
		if d.StartMinute < 0 || d.EndMinute >= 24*60 || d.StartMinute > d.EndMinute {
			return fmt.Errorf("daypart %d-%d out of range", d.StartMinute, d.EndMinute)
		}
	}
	_, err := domain.ParseAdType(string(c.Type))
	return err
}

// File serves a catalog read from disk. Refresh replaces the whole catalog
// or nothing.
type File struct {
	path string

	mu      sync.RWMutex
	byType  map[domain.AdType][]domain.CreativeAd
	anti    map[string][]string
	count   int
	modTime time.Time
}

var (
	_ port.Catalog               = (*File)(nil)
	_ port.AntiTargetingResource = (*File)(nil)
)

// Open loads the catalog at path.
func Open(path string) (*File, error) {
	f := &File{path: path}
	if _, err := f.Refresh(context.Background()); err != nil {
		return nil, err
	}
	return f, nil
}

// Refresh reloads the file when it changed since the last load. A file that
// fails to parse leaves the current catalog in place.
func (f *File) Refresh(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	st, err := os.Stat(f.path)
	if err != nil {
		return false, err
	}
	f.mu.RLock()
	unchanged := !f.modTime.IsZero() && st.ModTime().Equal(f.modTime)
	f.mu.RUnlock()
	if unchanged {
		return false, nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return false, err
	}
	doc, err := Parse(data)
	if err != nil {
		return false, err
	}
	f.Replace(doc)

	f.mu.Lock()
	f.modTime = st.ModTime()
	f.mu.Unlock()
	return true, nil
}

// Replace swaps in doc.
func (f *File) Replace(doc Document) {
	byType := make(map[domain.AdType][]domain.CreativeAd)
	for _, c := range doc.Creatives {
		byType[c.Type] = append(byType[c.Type], c)
	}
	anti := make(map[string][]string, len(doc.AntiTargeting))
	for id, sites := range doc.AntiTargeting {
		anti[id] = append([]string(nil), sites...)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.byType = byType
	f.anti = anti
	f.count = len(doc.Creatives)
}

// GetCreativeAds returns a copy of the creatives of adType.
func (f *File) GetCreativeAds(_ context.Context, adType domain.AdType) ([]domain.CreativeAd, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]domain.CreativeAd(nil), f.byType[adType]...), nil
}

// SitesForCreativeSet returns the anti-targeted sites of a creative set.
func (f *File) SitesForCreativeSet(creativeSetID string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.anti[creativeSetID]
}

// Count is the number of creatives across all ad types.
func (f *File) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}
