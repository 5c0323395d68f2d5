package shadercache

import (
	"fmt"

	"github.com/hupe1980/shadercache/internal/stageid"
)

// Stage identifies a graphics pipeline stage.
type Stage uint8

const (
	// StageVertexA is the optional first half of a split vertex program.
	StageVertexA Stage = iota
	// StageVertex is the vertex program.
	StageVertex
	// StageTessControl is the tessellation control (hull) program.
	StageTessControl
	// StageTessEvaluation is the tessellation evaluation (domain) program.
	StageTessEvaluation
	// StageGeometry is the geometry program.
	StageGeometry
	// StageFragment is the fragment (pixel) program.
	StageFragment

	// NumStages is the number of pipeline stages a bundle can carry.
	NumStages = 6
)

var stageNames = [NumStages]string{
	StageVertexA:        "vertex_a",
	StageVertex:         "vertex",
	StageTessControl:    "tess_control",
	StageTessEvaluation: "tess_evaluation",
	StageGeometry:       "geometry",
	StageFragment:       "fragment",
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	if int(s) < NumStages {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// ParseStage resolves a stage by its String name.
func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// AddressAbsent marks a stage that is not bound.
const AddressAbsent uint64 = 0

// Addresses holds the memory address of each stage's bytecode.
// AddressAbsent marks an unused stage.
type Addresses [NumStages]uint64

// IDAbsent is the stage id of an unused stage.
const IDAbsent = stageid.Absent

// Key identifies a bundle by the deduplicated id of each stage.
// IDAbsent marks an unused stage. Keys are comparable.
type Key [NumStages]uint32

// Bundle is a compiled program together with the stage bytecode it was
// compiled from. A nil Code entry marks an unused stage. Program is opaque
// to the cache.
type Bundle[P any] struct {
	Program P
	Code    [NumStages][]byte
}

// Stages returns the stages present in b.
func (b *Bundle[P]) Stages() []Stage {
	var out []Stage
	for i, code := range b.Code {
		if code != nil {
			out = append(out, Stage(i))
		}
	}
	return out
}
