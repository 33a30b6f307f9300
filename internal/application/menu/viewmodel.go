package menu

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/littlelemon/menu/internal/domain/menu"
	"go.uber.org/zap"
)

var errViewModelStarted = errors.New("view model already started")

// ViewModel keeps the visible list in step with the store and the view state.
// Every input change (stored snapshot, search phrase, sort direction)
// recomputes the list under one mutex and offers it on Updates.
type ViewModel struct {
	repo   menu.MenuItemRepository
	logger *zap.Logger

	mu      sync.Mutex
	state   menu.ViewState
	items   []menu.MenuItem
	visible []menu.MenuItem
	started bool
	closed  bool
	updates chan []menu.MenuItem
}

// NewViewModel creates a view model starting from state
func NewViewModel(repo menu.MenuItemRepository, state menu.ViewState, logger *zap.Logger) *ViewModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewModel{
		repo:    repo,
		logger:  logger,
		state:   state,
		visible: []menu.MenuItem{},
		updates: make(chan []menu.MenuItem, 1),
	}
}

// Start subscribes to the store. The first snapshot is applied before Start
// returns; later ones are applied in the background until ctx is done.
func (vm *ViewModel) Start(ctx context.Context) error {
	vm.mu.Lock()
	if vm.started {
		vm.mu.Unlock()
		return errViewModelStarted
	}
	vm.started = true
	vm.mu.Unlock()

	snapshots, err := vm.repo.ObserveAll(ctx)
	if err != nil {
		vm.finish()
		return err
	}

	select {
	case items, ok := <-snapshots:
		if !ok {
			vm.finish()
			return ctx.Err()
		}
		vm.apply(items)
	case <-ctx.Done():
		vm.finish()
		return ctx.Err()
	}

	go func() {
		defer vm.finish()
		for items := range snapshots {
			vm.apply(items)
		}
	}()
	return nil
}

// SetSearchPhrase replaces the filter phrase
func (vm *ViewModel) SetSearchPhrase(phrase string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.SearchPhrase = phrase
	vm.recompute()
}

// ToggleSort flips the sort direction
func (vm *ViewModel) ToggleSort() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state = vm.state.Toggled()
	vm.recompute()
}

// SetSortAscending sets the sort direction
func (vm *ViewModel) SetSortAscending(ascending bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.SortAscending = ascending
	vm.recompute()
}

// State returns the current view state
func (vm *ViewModel) State() menu.ViewState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Visible returns a copy of the current visible list
func (vm *ViewModel) Visible() []menu.MenuItem {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return slices.Clone(vm.visible)
}

// Updates delivers recomputed visible lists, latest value only.
// It is closed when the store subscription ends.
func (vm *ViewModel) Updates() <-chan []menu.MenuItem {
	return vm.updates
}

func (vm *ViewModel) apply(items []menu.MenuItem) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.items = items
	vm.recompute()
}

// recompute requires vm.mu
func (vm *ViewModel) recompute() {
	vm.visible = menu.Derive(vm.items, vm.state)
	if vm.closed {
		return
	}

	out := slices.Clone(vm.visible)
	select {
	case vm.updates <- out:
		return
	default:
	}
	select {
	case <-vm.updates:
	default:
	}
	vm.updates <- out
}

func (vm *ViewModel) finish() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}
	vm.closed = true
	close(vm.updates)
	vm.logger.Debug("view model stopped")
}
