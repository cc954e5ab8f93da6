package multiview

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SimulatorFlag persists the ghost-user simulator toggle under its own key.
type SimulatorFlag struct {
	storage Storage
	key     string
}

// NewSimulatorFlag builds the flag on top of storage.
func NewSimulatorFlag(storage Storage) *SimulatorFlag {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &SimulatorFlag{storage: storage, key: SimulatorKey}
}

// Active returns the stored toggle; a missing or unreadable value is false.
func (f *SimulatorFlag) Active(ctx context.Context) (bool, error) {
	data, err := f.storage.Load(ctx, f.key)
	if err != nil {
		if errors.Is(err, ErrStorageKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	active, err := strconv.ParseBool(strings.TrimSpace(string(data)))
	if err != nil {
		return false, nil
	}
	return active, nil
}

// SetActive persists the toggle.
func (f *SimulatorFlag) SetActive(ctx context.Context, active bool) error {
	if err := f.storage.Save(ctx, f.key, []byte(strconv.FormatBool(active))); err != nil {
		return fmt.Errorf("multiview: persist simulator flag: %w", err)
	}
	return nil
}

// Toggle flips the stored value and returns the new state.
func (f *SimulatorFlag) Toggle(ctx context.Context) (bool, error) {
	current, err := f.Active(ctx)
	if err != nil {
		return false, err
	}
	next := !current
	if err := f.SetActive(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}
