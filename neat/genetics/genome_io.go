package genetics

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// WriteGenome encodes g in the teacher-style plain-text format: a
// "genomestart <id>" / "genomeend <id>" bracketed block listing every node and
// gene. Grounded on the teacher's genome_writer.go.
func WriteGenome(w io.Writer, g *Genome) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "genomestart %d\n", g.ID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "shape %d %d %t\n", g.NumInputs, g.NumOutputs, g.HasBias); err != nil {
		return err
	}
	for _, id := range g.NodeIDs() {
		if _, err := fmt.Fprintf(bw, "node %d %s\n", id, g.RoleOf(id)); err != nil {
			return err
		}
	}
	for _, gene := range g.Genes {
		if _, err := fmt.Fprintf(bw, "gene %d %d %d %g %t\n",
			gene.Innovation, gene.InNode, gene.OutNode, gene.Weight, gene.Enabled); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "genomeend %d\n", g.ID); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadGenome decodes a genome previously written by WriteGenome. Node lines are
// skipped and not checked: the node set is rebuilt from the shape line and the
// gene endpoints, exactly as recomputeNodes does elsewhere.
func ReadGenome(r io.Reader) (*Genome, error) {
	sc := bufio.NewScanner(r)
	g := &Genome{SpeciesID: NoSpecies}
	sawShape := false
	for sc.Scan() {
		line := sc.Text()
		var tag string
		if n, _ := fmt.Sscan(line, &tag); n == 0 {
			continue
		}
		switch tag {
		case "genomestart":
			fmt.Sscanf(line, "genomestart %d", &g.ID)
		case "shape":
			fmt.Sscanf(line, "shape %d %d %t", &g.NumInputs, &g.NumOutputs, &g.HasBias)
			sawShape = true
		case "node":
			// ignored; the node set is rebuilt by recomputeNodes below.
		case "gene":
			var innov uint64
			var in, out uint32
			var weightStr, enabledStr string
			if _, err := fmt.Sscanf(line, "gene %d %d %d %s %s", &innov, &in, &out, &weightStr, &enabledStr); err == nil {
				weight, _ := strconv.ParseFloat(weightStr, 64)
				g.Genes = append(g.Genes, Gene{
					Innovation: innov, InNode: in, OutNode: out,
					Weight: weight, Enabled: enabledStr == "true",
				})
			}
		case "genomeend":
			if !sawShape {
				return nil, errors.New("genome stream missing shape line")
			}
			g.sortGenes()
			g.recomputeNodes()
			return g, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, errors.New("unexpected end of genome stream: missing genomeend")
}
