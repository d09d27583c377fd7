package run

import (
	"fmt"
	"time"

	"simlab/domain/core"
)

// Manifest is the replay record of one lab run. Two runs with the same seed,
// level and design must produce the same OutputHash.
type Manifest struct {
	RunID           core.RunID `json:"run_id"`
	Seed            uint64     `json:"seed"`
	ConfidenceLevel float64    `json:"confidence_level"`
	DesignHash      core.Hash  `json:"design_hash"`
	OutputHash      core.Hash  `json:"output_hash"`
	Draws           uint64     `json:"draws"`
	Fingerprint     core.Hash  `json:"fingerprint"` // Hash of all above except RunID
	CreatedAt       time.Time  `json:"created_at"`
}

// NewManifest creates a manifest and computes its fingerprint
func NewManifest(runID core.RunID, seed uint64, level float64, designHash, outputHash core.Hash, draws uint64) Manifest {
	return Manifest{
		RunID:           runID,
		Seed:            seed,
		ConfidenceLevel: level,
		DesignHash:      designHash,
		OutputHash:      outputHash,
		Draws:           draws,
		Fingerprint:     computeFingerprint(seed, level, designHash, outputHash, draws),
		CreatedAt:       time.Now().UTC(),
	}
}

func computeFingerprint(seed uint64, level float64, designHash, outputHash core.Hash, draws uint64) core.Hash {
	data := fmt.Sprintf("seed:%d|level:%g|design:%s|output:%s|draws:%d",
		seed, level, designHash, outputHash, draws)
	return core.NewHash([]byte(data))
}

// Validate checks if the manifest is complete
func (m Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewInvalidInputError("run_id", "cannot be empty")
	}
	if m.ConfidenceLevel <= 0 || m.ConfidenceLevel >= 1 {
		return core.NewInvalidInputError("confidence_level", "must be in (0, 1)")
	}
	if m.OutputHash.IsEmpty() {
		return core.NewInvalidInputError("output_hash", "cannot be empty")
	}
	if m.Fingerprint != computeFingerprint(m.Seed, m.ConfidenceLevel, m.DesignHash, m.OutputHash, m.Draws) {
		return fmt.Errorf("%w: fingerprint does not match manifest fields", core.ErrHashMismatch)
	}
	return nil
}

// Verify compares a replayed manifest against the recorded one.
func (m Manifest) Verify(replayed Manifest) error {
	if m.Seed != replayed.Seed {
		return fmt.Errorf("%w: recorded %d, replayed %d", core.ErrSeedMismatch, m.Seed, replayed.Seed)
	}
	if !m.DesignHash.Equals(replayed.DesignHash) {
		return fmt.Errorf("%w: design %s vs %s", core.ErrHashMismatch, m.DesignHash, replayed.DesignHash)
	}
	if !m.OutputHash.Equals(replayed.OutputHash) || m.Draws != replayed.Draws {
		return fmt.Errorf("%w: output %s (%d draws) vs %s (%d draws)",
			core.ErrHashMismatch, m.OutputHash, m.Draws, replayed.OutputHash, replayed.Draws)
	}
	return nil
}
