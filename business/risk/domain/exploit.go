package domain

import (
	"time"
)

// ExploitRecord is one historical security incident.
type ExploitRecord struct {
	Protocol      string    `json:"protocol" yaml:"protocol"`
	Date          time.Time `json:"date" yaml:"date"`
	LostUSD       float64   `json:"amount_lost_usd" yaml:"lost_usd"`
	RecoveredUSD  float64   `json:"amount_recovered_usd" yaml:"recovered_usd"`
	Category      string    `json:"category" yaml:"category"`
	Description   string    `json:"description" yaml:"description"`
	SourceURL     string    `json:"source_url" yaml:"source_url"`
	PostMortemURL string    `json:"post_mortem_url,omitempty" yaml:"post_mortem_url"`
}

// CategoryBridge marks bridge incidents.
const CategoryBridge = "bridge"

// NetLoss is the loss after recoveries, never negative.
func (e ExploitRecord) NetLoss() float64 {
	if loss := e.LostUSD - e.RecoveredUSD; loss > 0 {
		return loss
	}
	return 0
}

// ExploitHistory summarizes the incidents of one protocol.
type ExploitHistory struct {
	Records    []ExploitRecord `json:"records"`
	NetLossUSD float64         `json:"net_loss_usd"`
	Latest     *ExploitRecord  `json:"latest,omitempty"`
}

// NewExploitHistory summarizes records, which must be sorted newest first.
func NewExploitHistory(records []ExploitRecord) ExploitHistory {
	h := ExploitHistory{Records: records}
	for _, r := range records {
		h.NetLossUSD += r.NetLoss()
	}
	if len(records) > 0 {
		latest := records[0]
		h.Latest = &latest
	}
	return h
}

// HasExploits reports whether any incident is recorded.
func (h ExploitHistory) HasExploits() bool { return len(h.Records) > 0 }
