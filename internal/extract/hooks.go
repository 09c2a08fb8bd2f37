package extract

import (
	"github.com/rs/zerolog/log"

	"locsync/internal/jsast"
)

// Extension is the capability interface for traversal plugins. An
// extension implements whichever optional interfaces below it needs;
// the traverser probes for each capability per node.
//
// Hooks run inline during the single traversal pass so they observe
// live scope state. A panicking hook is isolated: the traverser logs a
// warning and continues with the pre-hook state.
type Extension interface {
	Name() string
}

// NodeObserver is notified before and after each node is processed.
type NodeObserver interface {
	BeforeNode(n jsast.Node)
	AfterNode(n jsast.Node)
}

// KeyContributor contributes additional key strings for expression
// shapes the core resolver does not understand. Implementations must
// not traverse; they only inspect the given expression.
type KeyContributor interface {
	ContributeKeys(expr jsast.Expr) []string
}

// ContextContributor contributes additional context strings for
// expression shapes the core resolver does not understand.
type ContextContributor interface {
	ContributeContexts(expr jsast.Expr) []string
}

// safeNodeHook invokes fn, recovering a panic so one failing extension
// cannot abort the pass.
func safeNodeHook(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("extension", name).Any("panic", r).Msg("Extension hook failed, continuing")
		}
	}()

	fn()
}

// safeContribute invokes fn and returns its strings, discarding them
// all when the hook panics.
func safeContribute(name string, fn func() []string) (out []string) {
	defer func() {
		if r := recover(); r != nil {
			out = nil

			log.Warn().Str("extension", name).Any("panic", r).Msg("Extension hook failed, ignoring its output")
		}
	}()

	return fn()
}
