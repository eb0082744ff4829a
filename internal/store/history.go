package store

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
)

// DefaultHistorySize bounds the search history list.
const DefaultHistorySize = 10

// History keeps the recently searched cities and the last searched city.
type History struct {
	mu  sync.Mutex
	kv  KV
	max int
}

// NewHistory creates a History over kv. If max is <= 0, DefaultHistorySize is used.
func NewHistory(kv KV, max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{kv: kv, max: max}
}

// Record moves city to the front of the history and makes it the last searched
// city. Entries differing only by case collapse into one.
func (h *History) Record(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.List()
	out := make([]string, 0, len(list)+1)
	out = append(out, city)
	for _, c := range list {
		if !strings.EqualFold(c, city) {
			out = append(out, c)
		}
	}
	if len(out) > h.max {
		out = out[:h.max]
	}

	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	if err := h.kv.Set(KeySearchHistory, string(data)); err != nil {
		return err
	}
	return h.kv.Set(KeyLastCity, city)
}

// List returns the history, most recent first. Unreadable data yields an empty list.
func (h *History) List() []string {
	raw, err := h.kv.Get(KeySearchHistory)
	if err != nil {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Printf("WARN: history: discarding unreadable search history: %v", err)
		return nil
	}
	return list
}

// LastCity returns the last searched city, if any.
func (h *History) LastCity() (string, bool) {
	city, err := h.kv.Get(KeyLastCity)
	if err != nil || city == "" {
		return "", false
	}
	return city, true
}
