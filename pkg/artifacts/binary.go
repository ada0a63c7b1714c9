package artifacts

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/marketscope/marketscope/pkg/simgraph"
)

// Binary artifacts are little-endian with a four-byte magic and a uint16
// format major. Readers reject any other major.
var (
	embeddingsMagic = [4]byte{'M', 'S', 'E', 'M'}
	adjacencyMagic  = [4]byte{'M', 'S', 'C', 'S'}
)

const binaryFormatVersion uint16 = 1

// writeEmbeddings writes the N×D float32 matrix as rows, dims, then data.
func (s *Store) writeEmbeddings(embeddings [][]float32) error {
	rows := len(embeddings)
	dims := 0
	if rows > 0 {
		dims = len(embeddings[0])
	}
	for i, row := range embeddings {
		if len(row) != dims {
			return fmt.Errorf("embedding row %d has dimension %d, want %d", i, len(row), dims)
		}
	}

	path := s.path(EmbeddingsFile)
	err := writeAtomic(path, func(w io.Writer) error {
		if err := binary.Write(w, binary.LittleEndian, embeddingsMagic); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, binaryFormatVersion); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(rows)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(dims)); err != nil {
			return err
		}
		for _, row := range embeddings {
			if err := binary.Write(w, binary.LittleEndian, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", EmbeddingsFile, err)
	}

	log.Debugf("Wrote %dx%d embedding matrix to %s", rows, dims, path)

	return nil
}

// ReadEmbeddings loads an embeddings artifact back into memory.
func ReadEmbeddings(path string) ([][]float32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	r := bufio.NewReader(file)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("embeddings artifact is truncated: %w", err)
	}
	if magic != embeddingsMagic {
		return nil, fmt.Errorf("%s is not an embeddings artifact (bad magic)", path)
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("embeddings artifact is truncated: %w", err)
	}
	if version != binaryFormatVersion {
		return nil, fmt.Errorf("unsupported embeddings format version %d", version)
	}

	var rows, dims uint32
	if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
		return nil, fmt.Errorf("embeddings artifact is truncated: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, fmt.Errorf("embeddings artifact is truncated: %w", err)
	}

	embeddings := make([][]float32, rows)
	for i := range embeddings {
		row := make([]float32, dims)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("embeddings artifact is truncated: %w", err)
		}
		embeddings[i] = row
	}

	if _, err := r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%s has trailing data", path)
	}

	return embeddings, nil
}

// writeAdjacency writes the graph in CSR form: row pointers, column
// indices, weights. Both directed entries of every edge are stored, so the
// matrix is symmetric by construction.
func (s *Store) writeAdjacency(g *simgraph.Graph) error {
	n := g.NumNodes()

	rowPtr := make([]uint64, n+1)
	for i := 0; i < n; i++ {
		rowPtr[i+1] = rowPtr[i] + uint64(g.Degree(i))
	}
	entries := rowPtr[n]

	cols := make([]uint32, 0, entries)
	weights := make([]float32, 0, entries)
	for i := 0; i < n; i++ {
		for _, edge := range g.Neighbors(i) {
			cols = append(cols, uint32(edge.To))
			weights = append(weights, float32(edge.Weight))
		}
	}

	path := s.path(AdjacencyFile)
	err := writeAtomic(path, func(w io.Writer) error {
		if err := binary.Write(w, binary.LittleEndian, adjacencyMagic); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, binaryFormatVersion); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(n)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, entries); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, rowPtr); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, cols); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, weights)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", AdjacencyFile, err)
	}

	log.Debugf("Wrote adjacency with %d stored entries to %s", entries, path)

	return nil
}

// ReadAdjacency loads an adjacency artifact back into a graph.
func ReadAdjacency(path string) (*simgraph.Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	r := bufio.NewReader(file)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("adjacency artifact is truncated: %w", err)
	}
	if magic != adjacencyMagic {
		return nil, fmt.Errorf("%s is not an adjacency artifact (bad magic)", path)
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("adjacency artifact is truncated: %w", err)
	}
	if version != binaryFormatVersion {
		return nil, fmt.Errorf("unsupported adjacency format version %d", version)
	}

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("adjacency artifact is truncated: %w", err)
	}
	var entries uint64
	if err := binary.Read(r, binary.LittleEndian, &entries); err != nil {
		return nil, fmt.Errorf("adjacency artifact is truncated: %w", err)
	}

	rowPtr := make([]uint64, n+1)
	if err := binary.Read(r, binary.LittleEndian, rowPtr); err != nil {
		return nil, fmt.Errorf("adjacency artifact is truncated: %w", err)
	}
	if rowPtr[n] != entries {
		return nil, fmt.Errorf("adjacency artifact is inconsistent: %d entries indexed, %d declared", rowPtr[n], entries)
	}

	cols := make([]uint32, entries)
	if err := binary.Read(r, binary.LittleEndian, cols); err != nil {
		return nil, fmt.Errorf("adjacency artifact is truncated: %w", err)
	}
	weights := make([]float32, entries)
	if err := binary.Read(r, binary.LittleEndian, weights); err != nil {
		return nil, fmt.Errorf("adjacency artifact is truncated: %w", err)
	}

	if _, err := r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%s has trailing data", path)
	}

	graph := simgraph.NewGraph(int(n))
	for i := 0; i < int(n); i++ {
		if rowPtr[i] > rowPtr[i+1] || rowPtr[i+1] > entries {
			return nil, fmt.Errorf("adjacency artifact has invalid row pointers at row %d", i)
		}
		for k := rowPtr[i]; k < rowPtr[i+1]; k++ {
			j := int(cols[k])
			if j >= int(n) {
				return nil, fmt.Errorf("adjacency artifact has out-of-range column %d at row %d", j, i)
			}
			if j > i {
				graph.AddEdge(i, j, float64(weights[k]))
			}
		}
	}

	return graph, nil
}
