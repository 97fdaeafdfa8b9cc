package preference

import (
	"fmt"

	"github.com/roach88/asksort/internal/ir"
)

// Contradiction reports a direct judgment that conflicted with a fact the
// store already held, and how the store recovered.
//
// Recovery trusts the newer judgment: the closure is rebuilt from every
// direct judgment, newest first, and any older direct judgment that the
// newer ones contradict is superseded until a later rebuild reinstates it.
type Contradiction struct {
	// Judgment is the newer direct judgment. It always survives recovery.
	Judgment ir.Judgment `json:"judgment"`

	// Conflicting is the fact Judgment contradicted. Its Source tells
	// whether the conflict was with a direct answer or an inference.
	Conflicting ir.Judgment `json:"conflicting"`

	// Superseded lists the older direct judgments this rebuild newly
	// overrode. Judgments superseded by an earlier rebuild are not repeated.
	Superseded []ir.Judgment `json:"superseded"`

	// Retracted lists the facts known before the rebuild and not after.
	// Conflicting is always among them.
	Retracted []ir.Judgment `json:"retracted"`
}

// String summarizes the contradiction on one line.
func (c Contradiction) String() string {
	return fmt.Sprintf("%s contradicts %s %s (superseded %d, retracted %d)",
		c.Judgment, c.Conflicting.Source, c.Conflicting,
		len(c.Superseded), len(c.Retracted))
}

// CanonicalMap converts the contradiction for canonical JSON output.
func (c Contradiction) CanonicalMap() map[string]any {
	superseded := c.Superseded
	if superseded == nil {
		superseded = []ir.Judgment{}
	}
	retracted := c.Retracted
	if retracted == nil {
		retracted = []ir.Judgment{}
	}
	return map[string]any{
		"judgment":    c.Judgment,
		"conflicting": c.Conflicting,
		"superseded":  superseded,
		"retracted":   retracted,
	}
}
