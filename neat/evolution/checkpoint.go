package evolution

import (
	"encoding/gob"
	"reflect"

	"github.com/arlowren/neatcore/neat/genetics"
	"github.com/arlowren/neatcore/neat/innovation"
)

// Checkpoint is a self-describing, losslessly round-trippable snapshot of a
// run in progress: the population, each species' persistent representative,
// the generation counter, the accumulated statistics, and the innovation
// registry's bookkeeping. Encode/Decode follow the teacher's
// experiment.Generation field-by-field gob convention.
//
// RNG reproducibility does not require serializing math/rand's internal
// state (Go does not expose it): Run derives each generation's random stream
// from (Seed, generation index), so resuming at Generation needs only Seed —
// see DESIGN.md.
type Checkpoint struct {
	Population      []*genetics.Genome
	Representatives map[int]*genetics.Genome
	Generation      int
	Statistics      *Statistics
	Innovation      innovation.Snapshot
	Seed            int64
}

// Encode writes c with enc, field by field.
func (c *Checkpoint) Encode(enc *gob.Encoder) error {
	for _, v := range []interface{}{
		c.Population,
		c.Representatives,
		c.Generation,
		c.Statistics,
		c.Innovation,
		c.Seed,
	} {
		if err := enc.EncodeValue(reflect.ValueOf(v)); err != nil {
			return err
		}
	}
	return nil
}

// DecodeCheckpoint reads a Checkpoint previously written by Encode.
func DecodeCheckpoint(dec *gob.Decoder) (*Checkpoint, error) {
	c := &Checkpoint{}
	fields := []interface{}{
		&c.Population,
		&c.Representatives,
		&c.Generation,
		&c.Statistics,
		&c.Innovation,
		&c.Seed,
	}
	for _, f := range fields {
		if err := dec.DecodeValue(reflect.ValueOf(f).Elem()); err != nil {
			return nil, err
		}
	}
	return c, nil
}
