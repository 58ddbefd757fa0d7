package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/skillsift/skillsift/pkg/utils"
)

// FlatIndex is an exact brute-force index over squared Euclidean distance.
// Search is read-only and safe for concurrent use; Build and Load replace
// the contents wholesale, there is no incremental insert or delete.
type FlatIndex struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	mu         sync.RWMutex
}

var _ Index = (*FlatIndex)(nil)

// NewFlatIndex creates an empty index for vectors of the given dimension.
func NewFlatIndex(dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	return &FlatIndex{dimensions: dimensions}, nil
}

// Build replaces the index contents with the given entries. All vectors
// must match the index dimension.
func (f *FlatIndex) Build(entries []Entry) error {
	ids := make([]string, len(entries))
	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		if len(e.Vector) != f.dimensions {
			return fmt.Errorf("%w: entry %d has %d dimensions, index expects %d",
				ErrDimensionMismatch, i, len(e.Vector), f.dimensions)
		}
		vec := make([]float32, f.dimensions)
		copy(vec, e.Vector)
		ids[i] = e.ID
		vectors[i] = vec
	}

	f.mu.Lock()
	f.ids = ids
	f.vectors = vectors
	f.mu.Unlock()
	return nil
}

// Search returns up to k entries ordered by ascending distance. Entries at
// equal distance keep insertion order, so results are deterministic. When k
// exceeds the index size all entries are returned; that is not an error.
func (f *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			ErrDimensionMismatch, len(query), f.dimensions)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if k <= 0 || len(f.ids) == 0 {
		return nil, nil
	}

	type scored struct {
		pos      int
		distance float64
	}
	scores := make([]scored, len(f.vectors))
	for i, vec := range f.vectors {
		scores[i] = scored{pos: i, distance: utils.SquaredL2(query, vec)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].distance < scores[j].distance })

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]Result, k)
	for i := 0; i < k; i++ {
		results[i] = Result{
			ID:       f.ids[scores[i].pos],
			Distance: scores[i].distance,
			Rank:     i,
		}
	}
	return results, nil
}

// Size returns the number of stored vectors.
func (f *FlatIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// Dimensions returns the vector dimension the index was created with.
func (f *FlatIndex) Dimensions() int {
	return f.dimensions
}

// Save persists the index to path. Format: dimension (uint32), count
// (uint32), then per entry: id length (uint32), id bytes, vector
// (dimension float32s), all little endian. The parent directory is
// created if needed.
func (f *FlatIndex) Save(path string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer file.Close()

	if err := binary.Write(file, binary.LittleEndian, uint32(f.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(len(f.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, id := range f.ids {
		idBytes := []byte(id)
		if err := binary.Write(file, binary.LittleEndian, uint32(len(idBytes))); err != nil {
			return fmt.Errorf("write id length: %w", err)
		}
		if _, err := file.Write(idBytes); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := file.Write(float32sToBytes(f.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads the index from path, replacing the in-memory contents. A
// missing file yields os.ErrNotExist; a dimension header that does not
// match the index yields ErrDimensionMismatch; a short or garbled file
// yields ErrIndexCorrupt.
func (f *FlatIndex) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var dim, count uint32
	if err := binary.Read(file, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("%w: read dimensions: %v", ErrIndexCorrupt, err)
	}
	if int(dim) != f.dimensions {
		return fmt.Errorf("%w: persisted index has %d dimensions, provider produces %d",
			ErrDimensionMismatch, dim, f.dimensions)
	}
	if err := binary.Read(file, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: read count: %v", ErrIndexCorrupt, err)
	}

	ids := make([]string, 0, count)
	vectors := make([][]float32, 0, count)
	buf := make([]byte, f.dimensions*4)
	for i := uint32(0); i < count; i++ {
		var idLen uint32
		if err := binary.Read(file, binary.LittleEndian, &idLen); err != nil {
			return fmt.Errorf("%w: read id length: %v", ErrIndexCorrupt, err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(file, idBytes); err != nil {
			return fmt.Errorf("%w: read id: %v", ErrIndexCorrupt, err)
		}
		if _, err := io.ReadFull(file, buf); err != nil {
			return fmt.Errorf("%w: read vector: %v", ErrIndexCorrupt, err)
		}
		ids = append(ids, string(idBytes))
		vectors = append(vectors, bytesToFloat32s(buf))
	}

	f.mu.Lock()
	f.ids = ids
	f.vectors = vectors
	f.mu.Unlock()
	return nil
}

func float32sToBytes(s []float32) []byte {
	out := make([]byte, len(s)*4)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*4:(i+1)*4], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32s(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : (i+1)*4]))
	}
	return out
}
