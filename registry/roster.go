// Package registry reads the roster of members that should be registered
// when the service boots.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"balloting-backend/models"
)

type Entry struct {
	Address common.Address `json:"address"`
	Name    string         `json:"name,omitempty"`
}

// Registrar is the part of the balloting service the roster needs.
type Registrar interface {
	IsMember(identity common.Address) bool
	RegisterMember(ctx context.Context, caller, identity common.Address) (*models.Receipt, error)
}

type Roster struct {
	entries []*Entry
	byAddr  map[common.Address]*Entry
	mu      sync.RWMutex
}

func NewRoster(entries ...Entry) (*Roster, error) {
	r := &Roster{byAddr: make(map[common.Address]*Entry)}
	for _, entry := range entries {
		if err := r.add(entry); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadRoster reads a roster file. A missing file is an empty roster.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("roster file not found", "path", path)
			return NewRoster()
		}
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var rosterData struct {
		Members []Entry `json:"members"`
	}
	if err := json.Unmarshal(data, &rosterData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roster: %w", err)
	}

	return NewRoster(rosterData.Members...)
}

func (r *Roster) add(entry Entry) error {
	if entry.Address == (common.Address{}) {
		return fmt.Errorf("roster entry %q has no address", entry.Name)
	}
	if _, exists := r.byAddr[entry.Address]; exists {
		return fmt.Errorf("roster lists %s twice", entry.Address.Hex())
	}

	e := entry
	r.entries = append(r.entries, &e)
	r.byAddr[e.Address] = &e
	return nil
}

// Add appends entry to the roster.
func (r *Roster) Add(entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(entry)
}

func (r *Roster) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		entries[i] = *e
	}
	return entries
}

func (r *Roster) Name(identity common.Address) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.byAddr[identity]
	if !exists {
		return "", false
	}
	return e.Name, true
}

// Save writes the roster to path.
func (r *Roster) Save(path string) error {
	rosterData := struct {
		Members []Entry `json:"members"`
	}{Members: r.Entries()}

	data, err := json.MarshalIndent(rosterData, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save roster file: %w", err)
	}
	return nil
}

// Bootstrap registers, as admin, every roster entry that is not a member
// yet. It returns how many were registered.
func (r *Roster) Bootstrap(ctx context.Context, registrar Registrar, admin common.Address) (int, error) {
	registered := 0
	for _, entry := range r.Entries() {
		if registrar.IsMember(entry.Address) {
			continue
		}
		if _, err := registrar.RegisterMember(ctx, admin, entry.Address); err != nil {
			return registered, fmt.Errorf("failed to register %s: %w", entry.Address.Hex(), err)
		}
		log.Info("registered roster member", "address", entry.Address.Hex(), "name", entry.Name)
		registered++
	}
	return registered, nil
}
