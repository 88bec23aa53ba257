package netio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// WriteClustering writes one "externalID module flow" line per node in
// node order, preceded by a summary header.
func WriteClustering(w io.Writer, g *graph.Model, modules []uint32, codelength float64) error {
	bw := bufio.NewWriter(w)
	numModules := 0
	seen := make(map[uint32]struct{})
	for _, m := range modules {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			numModules++
		}
	}
	fmt.Fprintf(bw, "# codelength %.10f bits in %d modules\n", codelength, numModules)
	fmt.Fprintf(bw, "# node module flow\n")
	nodes := g.Nodes()
	for i := range nodes {
		fmt.Fprintf(bw, "%d %d %.10g\n", nodes[i].ExternalID, modules[i], nodes[i].Flow)
	}
	return bw.Flush()
}

// WriteClusteringFile writes the clustering to a file, compressing with
// snappy when the path carries a .snappy suffix.
func WriteClusteringFile(path string, g *graph.Model, modules []uint32, codelength float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".snappy") {
		sw := snappy.NewBufferedWriter(f)
		if err := WriteClustering(sw, g, modules, codelength); err != nil {
			return err
		}
		return sw.Close()
	}
	return WriteClustering(f, g, modules, codelength)
}
