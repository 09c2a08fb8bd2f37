package extract

// ScopeInfo is the namespace and key-prefix metadata bound to a
// translator variable by a hook call.
type ScopeInfo struct {
	DefaultNamespace string
	KeyPrefix        string
}

type scopeFrame struct {
	bindings map[string]ScopeInfo
}

// ScopeManager maintains the stack of lexical scopes for one file's
// traversal. Each traversal owns its own manager; nothing here is
// shared across files, so bindings cannot leak between them.
type ScopeManager struct {
	frames []scopeFrame
}

// NewScopeManager returns a manager holding only the file-level frame.
func NewScopeManager() *ScopeManager {
	return &ScopeManager{frames: []scopeFrame{{bindings: map[string]ScopeInfo{}}}}
}

// Push opens a lexical region.
func (s *ScopeManager) Push() {
	s.frames = append(s.frames, scopeFrame{bindings: map[string]ScopeInfo{}})
}

// Pop closes the innermost region, discarding its bindings. The
// file-level frame is never popped.
func (s *ScopeManager) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Bind registers scope info for a variable name in the innermost frame.
// Rebinding a name shadows outer frames without mutating them.
func (s *ScopeManager) Bind(name string, info ScopeInfo) {
	if name == "" {
		return
	}

	s.frames[len(s.frames)-1].bindings[name] = info
}

// Lookup searches frames innermost to outermost and returns the first
// binding for name.
func (s *ScopeManager) Lookup(name string) (ScopeInfo, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if info, ok := s.frames[i].bindings[name]; ok {
			return info, true
		}
	}

	return ScopeInfo{}, false
}

// Depth returns the number of open frames. Used by tests.
func (s *ScopeManager) Depth() int { return len(s.frames) }
