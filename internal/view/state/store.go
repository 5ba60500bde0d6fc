package state

import (
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/viewpipe/internal/view/core"
)

// DefaultsFunc derives the initial view state for a buffer the split
// has never displayed, typically from buffer type (Markdown buffers
// with a recorded compose session default to compose mode).
type DefaultsFunc func(buffer BufferID) *BufferViewState

// genKey identifies a (buffer, split) generation counter.
type genKey struct {
	buffer BufferID
	split  SplitID
}

// Payload is an externally submitted view transform.
type Payload struct {
	BufferID   BufferID
	SplitID    SplitID
	Stream     core.ViewStream
	Hints      *core.LayoutHints
	Generation uint64
}

// Store is the view state store. All mutation goes through its
// switch/submit/hint operations under single-writer discipline per
// split; asynchronous submitters are serialized through the
// generation check.
type Store struct {
	mu sync.RWMutex

	splits   map[SplitID]*SplitViewState
	gens     map[genKey]uint64
	dirty    map[SplitID]bool
	defaults DefaultsFunc
}

// NewStore creates a view state store.
func NewStore(defaults DefaultsFunc) *Store {
	if defaults == nil {
		defaults = func(BufferID) *BufferViewState {
			return NewBufferViewState(ModeSource)
		}
	}
	return &Store{
		splits:   make(map[SplitID]*SplitViewState),
		gens:     make(map[genKey]uint64),
		dirty:    make(map[SplitID]bool),
		defaults: defaults,
	}
}

// OpenSplit registers a split showing the given buffer. No-op if the
// split already exists.
func (s *Store) OpenSplit(split SplitID, buffer BufferID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.splits[split]; ok {
		return
	}
	s.splits[split] = &SplitViewState{
		ActiveBuffer: buffer,
		Active:       s.defaults(buffer),
		Keyed:        make(map[BufferID]*BufferViewState),
	}
	s.dirty[split] = true
}

// CloseSplit removes a split and all of its state.
func (s *Store) CloseSplit(split SplitID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv, ok := s.splits[split]
	if !ok {
		return
	}
	delete(s.gens, genKey{buffer: sv.ActiveBuffer, split: split})
	for buf := range sv.Keyed {
		delete(s.gens, genKey{buffer: buf, split: split})
	}
	delete(s.splits, split)
	delete(s.dirty, split)
}

// SwitchBuffer snapshots the split's active state into keyed storage
// and activates the state for the target buffer, promoting a keyed
// state if one exists or deriving defaults otherwise. Any cached
// display lines for the split are invalidated.
func (s *Store) SwitchBuffer(split SplitID, to BufferID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv, ok := s.splits[split]
	if !ok {
		return fmt.Errorf("switch buffer: %w", ErrUnknownSplit)
	}
	if sv.ActiveBuffer == to {
		return nil
	}

	sv.Keyed[sv.ActiveBuffer] = sv.Active

	if kept, ok := sv.Keyed[to]; ok {
		delete(sv.Keyed, to)
		sv.Active = kept
	} else {
		sv.Active = s.defaults(to)
	}
	sv.ActiveBuffer = to
	s.dirty[split] = true
	return nil
}

// SubmitTransform validates a payload against the current generation
// for its (buffer, split) and, on success, replaces the last-submitted
// transform in the relevant view state. The target buffer may be
// keyed: a transform can address a buffer currently inactive in the
// split. A generation mismatch fails with ErrStaleTransform; the
// stored state is untouched. Application is atomic: full or not at
// all.
func (s *Store) SubmitTransform(p Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv, ok := s.splits[p.SplitID]
	if !ok {
		return fmt.Errorf("submit transform: %w", ErrUnknownSplit)
	}

	bvs, err := sv.lookupLocked(p.BufferID)
	if err != nil {
		return fmt.Errorf("submit transform: %w", err)
	}

	if cur := s.gens[genKey{buffer: p.BufferID, split: p.SplitID}]; cur != p.Generation {
		return fmt.Errorf("submit transform: %w (submitted %d, current %d)",
			ErrStaleTransform, p.Generation, cur)
	}

	if err := p.Stream.Validate(); err != nil {
		return fmt.Errorf("submit transform: %w", err)
	}

	bvs.LastTransform = &SubmittedTransform{
		Stream:     p.Stream,
		Hints:      p.Hints,
		Generation: p.Generation,
	}
	if p.Hints != nil {
		bvs.applyHints(*p.Hints)
	}
	s.dirty[p.SplitID] = true
	return nil
}

// SetHints merges hints into the split's active state and marks the
// split dirty. Always succeeds for a known split. Zero widths leave
// the stored values in place; use the dedicated setters to clear a
// width explicitly.
func (s *Store) SetHints(split SplitID, hints core.LayoutHints) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv, ok := s.splits[split]
	if !ok {
		return fmt.Errorf("set hints: %w", ErrUnknownSplit)
	}
	sv.Active.applyHints(hints)
	s.dirty[split] = true
	return nil
}

// SetComposeWidth sets the wrapping column for the split's active
// buffer. Unlike SetHints, the assignment is direct: zero disables
// wrapping rather than meaning "leave unchanged".
func (s *Store) SetComposeWidth(split SplitID, width int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv, ok := s.splits[split]
	if !ok {
		return fmt.Errorf("set compose width: %w", ErrUnknownSplit)
	}
	sv.Active.ComposeWidth = width
	s.dirty[split] = true
	return nil
}

// SetMaxWidth sets the total rendering width for the split's active
// buffer. Zero disables margins.
func (s *Store) SetMaxWidth(split SplitID, width int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv, ok := s.splits[split]
	if !ok {
		return fmt.Errorf("set max width: %w", ErrUnknownSplit)
	}
	sv.Active.MaxWidth = width
	s.dirty[split] = true
	return nil
}

// SetColumnGuides sets the guide columns for the split's active
// buffer. Nil or empty clears the guides.
func (s *Store) SetColumnGuides(split SplitID, guides []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv, ok := s.splits[split]
	if !ok {
		return fmt.Errorf("set column guides: %w", ErrUnknownSplit)
	}
	sv.Active.ColumnGuides = append([]int{}, guides...)
	s.dirty[split] = true
	return nil
}

// ToggleComposeMode flips the active buffer between source and
// compose mode.
func (s *Store) ToggleComposeMode(split SplitID) (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv, ok := s.splits[split]
	if !ok {
		return ModeSource, fmt.Errorf("toggle compose: %w", ErrUnknownSplit)
	}
	if sv.Active.Mode == ModeCompose {
		sv.Active.Mode = ModeSource
	} else {
		sv.Active.Mode = ModeCompose
	}
	s.dirty[split] = true
	return sv.Active.Mode, nil
}

// ActiveState returns a snapshot view of the split's active state.
func (s *Store) ActiveState(split SplitID) (BufferID, *BufferViewState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sv, ok := s.splits[split]
	if !ok {
		return "", nil, ErrUnknownSplit
	}
	return sv.ActiveBuffer, sv.Active, nil
}

// Generation returns the current ingest generation for (buffer,
// split).
func (s *Store) Generation(buffer BufferID, split SplitID) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gens[genKey{buffer: buffer, split: split}]
}

// BumpGeneration advances the ingest generation for (buffer, split),
// implicitly invalidating in-flight transform submissions against the
// previous snapshot.
func (s *Store) BumpGeneration(buffer BufferID, split SplitID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := genKey{buffer: buffer, split: split}
	s.gens[k]++
	s.dirty[split] = true
	return s.gens[k]
}

// Dirty reports and clears the split's dirty flag.
func (s *Store) Dirty(split SplitID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.dirty[split]
	s.dirty[split] = false
	return d
}

// GetViewState reads an opaque collaborator value by key path from the
// buffer's plugin extra document.
func (s *Store) GetViewState(buffer BufferID, split SplitID, key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bvs, err := s.lookupLocked(buffer, split)
	if err != nil {
		return nil, fmt.Errorf("get view state: %w", err)
	}
	res := gjson.GetBytes(bvs.pluginExtra, key)
	if !res.Exists() {
		return nil, nil
	}
	return res.Value(), nil
}

// SetViewState writes an opaque collaborator value by key path into
// the buffer's plugin extra document.
func (s *Store) SetViewState(buffer BufferID, split SplitID, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bvs, err := s.lookupLocked(buffer, split)
	if err != nil {
		return fmt.Errorf("set view state: %w", err)
	}
	extra, err := sjson.SetBytes(bvs.pluginExtra, key, value)
	if err != nil {
		return fmt.Errorf("set view state %q: %w", key, err)
	}
	bvs.pluginExtra = extra
	return nil
}

// ForEachState visits every buffer view state in a split, active and
// keyed, for persistence capture.
func (s *Store) ForEachState(split SplitID, fn func(BufferID, *BufferViewState)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sv, ok := s.splits[split]
	if !ok {
		return ErrUnknownSplit
	}
	fn(sv.ActiveBuffer, sv.Active)
	for buf, bvs := range sv.Keyed {
		fn(buf, bvs)
	}
	return nil
}

// AdoptState installs a restored view state for a buffer in a split
// without re-deriving it from source. The state replaces the active
// state if the buffer is active, otherwise it lands in keyed storage,
// preserving the one-authoritative-copy invariant.
func (s *Store) AdoptState(split SplitID, buffer BufferID, bvs *BufferViewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv, ok := s.splits[split]
	if !ok {
		return fmt.Errorf("adopt state: %w", ErrUnknownSplit)
	}
	if sv.ActiveBuffer == buffer {
		sv.Active = bvs
	} else {
		sv.Keyed[buffer] = bvs
	}
	s.dirty[split] = true
	return nil
}

// lookupLocked finds the authoritative state for (buffer, split).
func (s *Store) lookupLocked(buffer BufferID, split SplitID) (*BufferViewState, error) {
	sv, ok := s.splits[split]
	if !ok {
		return nil, ErrUnknownSplit
	}
	return sv.lookupLocked(buffer)
}

// lookupLocked finds the buffer's state in the split, active or keyed.
func (sv *SplitViewState) lookupLocked(buffer BufferID) (*BufferViewState, error) {
	if sv.ActiveBuffer == buffer {
		return sv.Active, nil
	}
	if bvs, ok := sv.Keyed[buffer]; ok {
		return bvs, nil
	}
	return nil, ErrUnknownBuffer
}
