package anomaly

import (
	"math"
	"math/rand"
	"sort"
)

const (
	iforestTrees      = 100
	iforestSampleSize = 256
)

// isolationForest scores one-dimensional points by how quickly random
// splits isolate them. Trained with a fixed seed so repeated detection
// runs over the same series flag the same points.
type isolationForest struct {
	trees      []*isoNode
	sampleSize int
	threshold  float64
	rng        *rand.Rand
}

type isoNode struct {
	splitValue float64
	left       *isoNode
	right      *isoNode
	size       int
	isLeaf     bool
}

func newIsolationForest() *isolationForest {
	return &isolationForest{
		sampleSize: iforestSampleSize,
		rng:        rand.New(rand.NewSource(42)),
	}
}

// fit builds the ensemble and sets the flagging threshold at the
// (1 - contamination) quantile of the training scores. A point is
// flagged only when its score strictly exceeds the threshold, so a
// degenerate flat series flags nothing.
func (f *isolationForest) fit(data []float64, contamination float64) {
	sampleSize := f.sampleSize
	if len(data) < sampleSize {
		sampleSize = len(data)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))

	f.trees = make([]*isoNode, iforestTrees)
	for i := 0; i < iforestTrees; i++ {
		sample := f.sample(data, sampleSize)
		f.trees[i] = f.build(sample, 0, maxDepth)
	}
	f.sampleSize = sampleSize

	scores := make([]float64, len(data))
	for i, v := range data {
		scores[i] = f.score(v)
	}
	sort.Float64s(scores)
	idx := int(float64(len(scores)) * (1 - contamination))
	if idx >= len(scores) {
		idx = len(scores) - 1
	}
	if idx < 0 {
		idx = 0
	}
	f.threshold = scores[idx]
}

// flagged reports whether v scores above the trained threshold.
func (f *isolationForest) flagged(v float64) bool {
	return f.score(v) > f.threshold
}

func (f *isolationForest) score(v float64) float64 {
	if len(f.trees) == 0 {
		return 0.5
	}
	var total float64
	for _, tree := range f.trees {
		total += f.pathLength(tree, v, 0)
	}
	avgPath := total / float64(len(f.trees))
	c := avgPathLength(float64(f.sampleSize))
	if c == 0 {
		return 0.5
	}
	return math.Pow(2, -avgPath/c)
}

func (f *isolationForest) sample(data []float64, size int) []float64 {
	if len(data) <= size {
		return data
	}
	out := make([]float64, size)
	for i := range out {
		out[i] = data[f.rng.Intn(len(data))]
	}
	return out
}

func (f *isolationForest) build(data []float64, depth, maxDepth int) *isoNode {
	if len(data) <= 1 || depth >= maxDepth {
		return &isoNode{size: len(data), isLeaf: true}
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if minVal == maxVal {
		return &isoNode{size: len(data), isLeaf: true}
	}

	split := minVal + f.rng.Float64()*(maxVal-minVal)
	var left, right []float64
	for _, v := range data {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}

	return &isoNode{
		splitValue: split,
		left:       f.build(left, depth+1, maxDepth),
		right:      f.build(right, depth+1, maxDepth),
		size:       len(data),
	}
}

func (f *isolationForest) pathLength(node *isoNode, v float64, depth int) float64 {
	if node == nil || node.isLeaf {
		if node != nil && node.size > 1 {
			return float64(depth) + avgPathLength(float64(node.size))
		}
		return float64(depth)
	}
	if v < node.splitValue {
		return f.pathLength(node.left, v, depth+1)
	}
	return f.pathLength(node.right, v, depth+1)
}

// avgPathLength is the expected path length of an unsuccessful BST
// search over n points, using the harmonic number approximation.
func avgPathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(n-1)+0.5772156649) - 2*(n-1)/n
}
