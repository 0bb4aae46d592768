package imageprocessor

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"imagehasher/hasher"
)

// Algorithm pairs a fingerprinter with the processor whose handles it
// understands. The two always travel together; feeding one backend's
// handles to another's fingerprinter is rejected at runtime.
type Algorithm struct {
	Name          string
	Processor     hasher.Processor
	Fingerprinter hasher.Fingerprinter
}

// AlgorithmRegistry maintains the set of named fingerprint algorithms.
type AlgorithmRegistry struct {
	algorithms map[string]Algorithm
	defaultAlg string
	mutex      sync.RWMutex
}

// NewAlgorithmRegistry creates a registry with all built-in algorithms
// registered. "gradient" is the default: the difference hash is robust to
// brightness shifts and cheap enough for large scans.
func NewAlgorithmRegistry() *AlgorithmRegistry {
	registry := &AlgorithmRegistry{
		algorithms: make(map[string]Algorithm),
	}

	// OpenCV-backed algorithms.
	mat := NewMatProcessor()
	registry.Register(Algorithm{Name: "average", Processor: mat, Fingerprinter: AverageHash{}})
	registry.Register(Algorithm{Name: "gradient", Processor: mat, Fingerprinter: GradientHash{}})
	registry.Register(Algorithm{Name: "perceptual", Processor: mat, Fingerprinter: PerceptualHash{}})

	// Pure-Go algorithms, usable without an OpenCV installation.
	native := NewNativeProcessor()
	registry.Register(Algorithm{Name: "ahash", Processor: native, Fingerprinter: NativeAverage{}})
	registry.Register(Algorithm{Name: "dhash", Processor: native, Fingerprinter: NativeDifference{}})
	registry.Register(Algorithm{Name: "phash", Processor: native, Fingerprinter: NativePerception{}})

	registry.defaultAlg = "gradient"
	return registry
}

// Register adds or replaces a named algorithm.
func (r *AlgorithmRegistry) Register(alg Algorithm) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.algorithms[strings.ToLower(alg.Name)] = alg
}

// Get returns the algorithm registered under name. An empty name selects
// the default algorithm.
func (r *AlgorithmRegistry) Get(name string) (Algorithm, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if name == "" {
		name = r.defaultAlg
	}
	alg, ok := r.algorithms[strings.ToLower(name)]
	if !ok {
		return Algorithm{}, fmt.Errorf("unknown fingerprint algorithm %q (available: %s)",
			name, strings.Join(r.names(), ", "))
	}
	return alg, nil
}

// Names returns the registered algorithm names, sorted.
func (r *AlgorithmRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.names()
}

func (r *AlgorithmRegistry) names() []string {
	names := make([]string, 0, len(r.algorithms))
	for name := range r.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
