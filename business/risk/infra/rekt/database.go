// Package rekt serves the curated bridge exploit database.
package rekt

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	bridgeDomain "github.com/fd1az/liquidity-vector/business/bridge/domain"
	"github.com/fd1az/liquidity-vector/business/risk/app"
	"github.com/fd1az/liquidity-vector/business/risk/domain"
)

//go:embed exploits.yaml
var curated []byte

// Database indexes exploit records by protocol. It is safe for concurrent use.
type Database struct {
	mu         sync.RWMutex
	byProtocol map[string][]domain.ExploitRecord
}

var _ app.ExploitDB = (*Database)(nil)

// New loads the embedded records plus any additional ones.
func New(additional ...domain.ExploitRecord) (*Database, error) {
	return Load(curated, additional...)
}

// Load parses a YAML list of records.
func Load(data []byte, additional ...domain.ExploitRecord) (*Database, error) {
	var records []domain.ExploitRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse exploit records: %w", err)
	}

	db := &Database{byProtocol: make(map[string][]domain.ExploitRecord)}
	for _, r := range append(records, additional...) {
		if strings.TrimSpace(r.Protocol) == "" {
			return nil, fmt.Errorf("exploit record dated %s has no protocol", r.Date.Format("2006-01-02"))
		}
		db.add(r)
	}
	return db, nil
}

// Add records a new incident.
func (d *Database) Add(r domain.ExploitRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.add(r)
}

func (d *Database) add(r domain.ExploitRecord) {
	key := strings.ToLower(r.Protocol)
	list := append(d.byProtocol[key], r)
	sortByDate(list)
	d.byProtocol[key] = list
}

// Records returns the incidents of protocol, newest first. An exact
// (case-insensitive) protocol name wins; otherwise every protocol whose name
// contains, or is contained in, the query matches.
func (d *Database) Records(protocol string) []domain.ExploitRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(protocol))
	if list, ok := d.byProtocol[key]; ok {
		return append([]domain.ExploitRecord(nil), list...)
	}

	var out []domain.ExploitRecord
	for name, list := range d.byProtocol {
		if bridgeDomain.NameMatches(name, key) {
			out = append(out, list...)
		}
	}
	sortByDate(out)
	return out
}

// History summarizes the incidents of protocol.
func (d *Database) History(protocol string) domain.ExploitHistory {
	return domain.NewExploitHistory(d.Records(protocol))
}

// Latest returns the most recent incident of protocol, or nil.
func (d *Database) Latest(protocol string) *domain.ExploitRecord {
	return d.History(protocol).Latest
}

// BridgeExploits lists every bridge incident, largest loss first.
func (d *Database) BridgeExploits() []domain.ExploitRecord {
	d.mu.RLock()
	var out []domain.ExploitRecord
	for _, list := range d.byProtocol {
		for _, r := range list {
			if r.Category == domain.CategoryBridge {
				out = append(out, r)
			}
		}
	}
	d.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LostUSD != out[j].LostUSD {
			return out[i].LostUSD > out[j].LostUSD
		}
		return out[i].Protocol < out[j].Protocol
	})
	return out
}

// Protocols lists the protocols with at least one incident, sorted.
func (d *Database) Protocols() []string {
	d.mu.RLock()
	out := make([]string, 0, len(d.byProtocol))
	for name := range d.byProtocol {
		out = append(out, name)
	}
	d.mu.RUnlock()

	sort.Strings(out)
	return out
}

func sortByDate(list []domain.ExploitRecord) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
}
