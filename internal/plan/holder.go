package plan

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// fileEntry mirrors Entry for file decoding.
type fileEntry struct {
	Plan     string            `mapstructure:"plan"`
	Limit    int64             `mapstructure:"limit"`
	PriceIDs map[string]string `mapstructure:"priceIds"`
}

// CatalogHolder serves catalog snapshots, optionally backed by a plans.yml
// file with hot reload. Without a file the built-in defaults apply.
type CatalogHolder struct {
	current atomic.Value // holds *Catalog
}

// NewCatalogHolder reads the plan catalog from plans.yml when present.
func NewCatalogHolder(configPath string) (*CatalogHolder, error) {
	holder := &CatalogHolder{}

	v := viper.New()
	v.SetConfigName("plans")
	v.SetConfigType("yml")
	if strings.TrimSpace(configPath) != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("/etc/copyad")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultCatalog())
		return holder, nil
	}

	catalog, err := decodeCatalog(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(catalog)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeCatalog(v)
		if err != nil {
			log.Printf("[plan-catalog] reload failed: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[plan-catalog] reloaded from %s", e.Name)
	})

	return holder, nil
}

// Catalog returns the current snapshot.
func (h *CatalogHolder) Catalog() *Catalog {
	return h.current.Load().(*Catalog)
}

func decodeCatalog(v *viper.Viper) (*Catalog, error) {
	var raw []fileEntry
	if err := v.UnmarshalKey("plans", &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return DefaultCatalog(), nil
	}

	entries := make([]Entry, 0, len(raw))
	for _, fe := range raw {
		entry := Entry{
			Plan:     Plan(strings.ToLower(strings.TrimSpace(fe.Plan))),
			Limit:    fe.Limit,
			PriceIDs: map[Interval]string{},
		}
		for interval, priceID := range fe.PriceIDs {
			entry.PriceIDs[Interval(strings.ToLower(strings.TrimSpace(interval)))] = priceID
		}
		entries = append(entries, entry)
	}
	return NewCatalog(entries), nil
}
