// Package hnsw implements the Hierarchical Navigable Small World (HNSW) graph for approximate nearest neighbor search.
package hnsw

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/hupe1980/annie/distance"
	"github.com/hupe1980/annie/index"
	"github.com/hupe1980/annie/internal/queue"
	"github.com/hupe1980/annie/internal/visited"
	"github.com/hupe1980/annie/persistence"
	"github.com/hupe1980/annie/vectorstore"
)

const (
	// layerNormalizationBase is the base constant for exponential layer probability distribution.
	layerNormalizationBase = 1.0

	// mmax0Multiplier is the multiplier for calculating maximum connections at layer 0.
	mmax0Multiplier = 2

	// minimumM is the minimum valid value for M.
	minimumM = 2

	// maxLevelLimit caps the drawn level so it fits the persisted format.
	maxLevelLimit = 64

	// DefaultM is the default number of bidirectional links.
	DefaultM = 16

	// DefaultEFConstruction is the default beam width while building.
	DefaultEFConstruction = 200

	// DefaultEFSearch is the default beam width while searching.
	DefaultEFSearch = 50

	// DefaultMaxFilterExpansion bounds filtered widening to this multiple of the initial beam.
	DefaultMaxFilterExpansion = 16
)

// Compile-time check
var _ index.Index = (*HNSW)(nil)

// Options represents the options for configuring HNSW.
type Options struct {
	Dimension int
	Metric    distance.Metric

	// M is the number of links per node and layer (2·M on layer 0).
	M int

	// EFConstruction is the candidate list size used while inserting.
	EFConstruction int

	// EFSearch is the candidate list size used while searching; the
	// effective value is never below k.
	EFSearch int

	// Heuristic enables diversity-aware neighbour selection.
	Heuristic bool

	// RandomSeed makes level assignment reproducible.
	RandomSeed *int64

	// MaxFilterExpansion bounds how far a filtered search may widen its
	// beam, as a multiple of the initial beam width.
	MaxFilterExpansion int
}

var DefaultOptions = Options{
	Dimension:          0,
	Metric:             distance.Euclidean(),
	M:                  DefaultM,
	EFConstruction:     DefaultEFConstruction,
	EFSearch:           DefaultEFSearch,
	Heuristic:          true,
	MaxFilterExpansion: DefaultMaxFilterExpansion,
}

// node is the graph record of a store position. links[l] holds the
// neighbours on layer l for every l <= level.
type node struct {
	level int
	links [][]uint32
}

// HNSW represents the Hierarchical Navigable Small World graph.
//
// Searches may run concurrently with each other; Add and Remove require
// exclusive access.
type HNSW struct {
	opts  Options
	dist  distance.Func
	store *vectorstore.Store

	nodes      []node
	entryPoint uint32
	maxLevel   int

	maxConnectionsPerLayer int
	maxConnectionsLayer0   int
	layerMultiplier        float64

	seed  int64
	draws uint64
	rng   *rand.Rand

	visitedPool *visited.Pool
}

// New creates a new HNSW instance.
func New(optFns ...func(o *Options)) (*HNSW, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := validateOptions(&opts); err != nil {
		return nil, err
	}

	store, err := vectorstore.New(opts.Dimension)
	if err != nil {
		return nil, index.StoreError(err)
	}

	seed := time.Now().UnixNano()
	if opts.RandomSeed != nil {
		seed = *opts.RandomSeed
	}
	return newWithStore(opts, store, seed), nil
}

func validateOptions(opts *Options) error {
	if opts.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be > 0, got %d", index.ErrInvalidParameter, opts.Dimension)
	}
	if err := opts.Metric.Validate(); err != nil {
		return fmt.Errorf("%w: %v", index.ErrInvalidParameter, err)
	}
	if opts.M < minimumM {
		opts.M = minimumM
	}
	if opts.EFConstruction <= 0 || opts.EFSearch <= 0 {
		return fmt.Errorf("%w: ef values must be > 0", index.ErrInvalidParameter)
	}
	if opts.MaxFilterExpansion < 1 {
		return fmt.Errorf("%w: max filter expansion must be >= 1", index.ErrInvalidParameter)
	}
	return nil
}

func newWithStore(opts Options, store *vectorstore.Store, seed int64) *HNSW {
	h := &HNSW{
		opts:                   opts,
		dist:                   opts.Metric.Func(),
		store:                  store,
		maxConnectionsPerLayer: opts.M,
		maxConnectionsLayer0:   mmax0Multiplier * opts.M,
		layerMultiplier:        layerNormalizationBase / math.Log(float64(opts.M)),
		seed:                   seed,
		rng:                    rand.New(rand.NewSource(seed)),
	}
	h.visitedPool = visited.NewPool(func() int { return len(h.nodes) })
	return h
}

// Kind implements index.Index.
func (h *HNSW) Kind() index.Kind { return index.KindHNSW }

// Dimension returns the vector dimensionality.
func (h *HNSW) Dimension() int { return h.opts.Dimension }

// Metric returns the distance metric.
func (h *HNSW) Metric() distance.Metric { return h.opts.Metric }

// Options returns the effective configuration.
func (h *HNSW) Options() Options { return h.opts }

// Len returns the number of live entries.
func (h *HNSW) Len() int { return h.store.Len() }

// Store exposes the entry storage.
func (h *HNSW) Store() *vectorstore.Store { return h.store }

// Get returns the most recently added live vector for id.
func (h *HNSW) Get(id int64) ([]float32, bool) { return h.store.Get(id) }

// Remove tombstones every entry carrying one of ids. The nodes stay in the
// graph as routing hops but never appear in results.
func (h *HNSW) Remove(ids []int64) int { return h.store.Remove(ids) }

// Add inserts a batch. The batch is validated as a whole before the first
// node is linked.
func (h *HNSW) Add(ids []int64, vectors [][]float32) error {
	first, err := h.store.Add(ids, vectors)
	if err != nil {
		return index.StoreError(err)
	}
	for i := range ids {
		h.insert(first + uint32(i))
	}
	return nil
}

// randomLevel draws floor(-ln(U) * 1/ln(M)) with U in (0, 1].
func (h *HNSW) randomLevel() int {
	h.draws++
	u := 1 - h.rng.Float64()
	return min(int(math.Floor(-math.Log(u)*h.layerMultiplier)), maxLevelLimit)
}

func (h *HNSW) insert(pos uint32) {
	level := h.randomLevel()
	h.nodes = append(h.nodes, node{level: level, links: make([][]uint32, level+1)})

	// Handle First Node
	if len(h.nodes) == 1 {
		h.entryPoint = pos
		h.maxLevel = level
		return
	}

	score := index.NewScorer(h.dist, h.opts.Metric, h.store, h.store.Vector(pos))
	currID := h.entryPoint
	currDist := score(currID)

	// 1. Greedy search from top to level + 1
	for l := h.maxLevel; l > level; l-- {
		currID, currDist = h.greedy(score, currID, currDist, l)
	}

	// 2. Search and link from min(level, maxLevel) down to 0
	for l := min(level, h.maxLevel); l >= 0; l-- {
		candidates, _ := h.searchLayer(score, currID, currDist, l, h.opts.EFConstruction, nil)

		if best, ok := candidates.MinItem(); ok {
			currID = best.Node
			currDist = best.Distance
		}

		neighbors := h.selectNeighbors(candidates, h.maxConnections(l))
		h.nodes[pos].links[l] = neighbors
		for _, n := range neighbors {
			h.addConnection(n, pos, l)
		}
	}

	// Update Entry Point
	if level > h.maxLevel {
		h.maxLevel = level
		h.entryPoint = pos
	}
}

func (h *HNSW) maxConnections(level int) int {
	if level == 0 {
		return h.maxConnectionsLayer0
	}
	return h.maxConnectionsPerLayer
}

// greedy follows the single best neighbour on level until no improvement.
func (h *HNSW) greedy(score index.Scorer, currID uint32, currDist float64, level int) (uint32, float64) {
	changed := true
	for changed {
		changed = false
		for _, next := range h.nodes[currID].links[level] {
			if d := score(next); d < currDist {
				currID = next
				currDist = d
				changed = true
			}
		}
	}
	return currID, currDist
}

// between returns the distance between two stored positions.
func (h *HNSW) between(a, b uint32) float64 {
	va, vb := h.store.Vector(a), h.store.Vector(b)
	if h.opts.Metric.Kind == distance.KindCosine {
		return distance.CosineFromDot(distance.Dot(va, vb), h.store.NormSq(a), h.store.NormSq(b))
	}
	return h.dist(va, vb)
}

// addConnection links source to target on level, pruning source's list
// back to the layer cap when it overflows.
func (h *HNSW) addConnection(source, target uint32, level int) {
	conns := h.nodes[source].links[level]
	if slices.Contains(conns, target) {
		return
	}

	maxM := h.maxConnections(level)
	if len(conns) < maxM {
		h.nodes[source].links[level] = append(conns, target)
		return
	}

	candidates := queue.NewMax(len(conns) + 1)
	for _, c := range conns {
		candidates.PushItem(queue.PriorityQueueItem{Node: c, Distance: h.between(source, c)})
	}
	candidates.PushItem(queue.PriorityQueueItem{Node: target, Distance: h.between(source, target)})

	h.nodes[source].links[level] = h.selectNeighbors(candidates, maxM)
}

// selectNeighbors selects the best neighbors from candidates (a max-heap).
func (h *HNSW) selectNeighbors(candidates *queue.PriorityQueue, m int) []uint32 {
	sorted := candidates.Drain()
	if h.opts.Heuristic && len(sorted) > m {
		return h.selectNeighborsHeuristic(sorted, m)
	}
	if len(sorted) > m {
		sorted = sorted[:m]
	}
	res := make([]uint32, len(sorted))
	for i, it := range sorted {
		res[i] = it.Node
	}
	return res
}

// selectNeighborsHeuristic keeps a candidate only if it is closer to the
// base node than to every neighbour already selected, then fills any
// remaining slots with the closest rejected candidates.
func (h *HNSW) selectNeighborsHeuristic(sorted []queue.PriorityQueueItem, m int) []uint32 {
	result := make([]uint32, 0, m)
	skipped := make([]uint32, 0, len(sorted))

	for _, cand := range sorted {
		if len(result) >= m {
			break
		}
		good := true
		for _, r := range result {
			if h.between(cand.Node, r) < cand.Distance {
				good = false
				break
			}
		}
		if good {
			result = append(result, cand.Node)
		} else {
			skipped = append(skipped, cand.Node)
		}
	}

	for _, s := range skipped {
		if len(result) >= m {
			break
		}
		result = append(result, s)
	}
	return result
}

// searchLayer runs a best-first search on level.
//
// Every visited node takes part in navigation and in the termination test,
// so rejected or removed nodes remain valid hops. Only nodes passing accept
// (all nodes when accept is nil) are collected in the returned max-heap,
// which holds at most ef items. The second result counts the nodes that
// entered the beam; accept was asked about exactly those.
func (h *HNSW) searchLayer(score index.Scorer, ep uint32, epDist float64, level int, ef int, accept func(uint32) bool) (*queue.PriorityQueue, int) {
	vs := h.visitedPool.Get()
	defer h.visitedPool.Put(vs)

	candidates := queue.NewMin(ef) // closest first, still to expand
	frontier := queue.NewMax(ef)   // best ef seen, bounds the search
	results := frontier
	if accept != nil {
		results = queue.NewMax(ef)
	}

	admitted := 0
	consider := func(item queue.PriorityQueueItem) {
		if frontier.Len() >= ef {
			worst, _ := frontier.TopItem()
			if !item.Less(worst) {
				return
			}
		}
		admitted++
		candidates.PushItem(item)
		frontier.PushBounded(item, ef)
		if accept != nil && accept(item.Node) {
			results.PushBounded(item, ef)
		}
	}

	vs.Visit(ep)
	consider(queue.PriorityQueueItem{Node: ep, Distance: epDist})

	for candidates.Len() > 0 {
		curr, _ := candidates.PopItem()

		if frontier.Len() >= ef {
			worst, _ := frontier.TopItem()
			if worst.Less(curr) {
				break
			}
		}

		for _, next := range h.nodes[curr.Node].links[level] {
			if !vs.Visit(next) {
				continue
			}
			consider(queue.PriorityQueueItem{Node: next, Distance: score(next)})
		}
	}

	return results, admitted
}

// Search returns up to k approximate nearest neighbours accepted by filter.
//
// With a filter, or when entries have been removed, the beam is doubled
// while fewer than k accepted results are found, up to MaxFilterExpansion
// times the initial beam. Hitting that bound is reported through
// SearchReport.Degraded, not as an error.
func (h *HNSW) Search(query []float32, k int, filter index.Filter) ([]index.SearchResult, index.SearchReport, error) {
	if err := index.ValidateSearch(h.store, query, k); err != nil {
		return nil, index.SearchReport{}, err
	}

	score := index.NewScorer(h.dist, h.opts.Metric, h.store, query)

	// 1. Greedy to layer 0
	currID := h.entryPoint
	currDist := score(currID)
	for l := h.maxLevel; l > 0; l-- {
		currID, currDist = h.greedy(score, currID, currDist, l)
	}

	accept := h.acceptor(filter)
	if accept != nil {
		defer accept.release()
	}

	ef0 := max(h.opts.EFSearch, k)
	bound := ef0 * h.opts.MaxFilterExpansion
	total := len(h.nodes)

	// 2. Search layer 0, widening while too few results pass
	var report index.SearchReport
	ef := ef0
	for {
		var (
			results  *queue.PriorityQueue
			admitted int
		)
		if accept == nil {
			results, admitted = h.searchLayer(score, currID, currDist, 0, ef, nil)
		} else {
			results, admitted = h.searchLayer(score, currID, currDist, 0, ef, accept.accept)
		}
		report.EF = min(ef, total)

		// Only a pass that judged every node is exhaustive. A beam as wide
		// as the graph can still miss nodes cut off from the entry point.
		done := accept == nil || results.Len() >= k || admitted == total
		if !done && (ef >= bound || ef >= total) {
			report.Degraded = true
			done = true
		}
		if done {
			return h.collect(results, k), report, nil
		}

		ef = min(2*ef, bound, total)
		report.Expansions++
	}
}

func (h *HNSW) collect(results *queue.PriorityQueue, k int) []index.SearchResult {
	items := results.Drain()
	if len(items) > k {
		items = items[:k]
	}
	out := make([]index.SearchResult, len(items))
	for i, it := range items {
		out[i] = index.SearchResult{ID: h.store.ID(it.Node), Distance: it.Distance}
	}
	return out
}

// acceptor memoizes filter decisions for one query so the predicate runs at
// most once per candidate across widening passes.
type acceptor struct {
	store  *vectorstore.Store
	filter index.Filter
	pool   *visited.Pool
	seen   *visited.VisitedSet
	passed *visited.VisitedSet
}

// acceptor returns nil when every node is acceptable.
func (h *HNSW) acceptor(filter index.Filter) *acceptor {
	if filter == nil && !h.store.HasDeleted() {
		return nil
	}
	a := &acceptor{store: h.store, filter: filter, pool: h.visitedPool}
	if filter != nil {
		a.seen = h.visitedPool.Get()
		a.passed = h.visitedPool.Get()
	}
	return a
}

func (a *acceptor) accept(pos uint32) bool {
	if a.store.Deleted(pos) {
		return false
	}
	if a.filter == nil {
		return true
	}
	if !a.seen.Visit(pos) {
		return a.passed.Visited(pos)
	}
	if a.filter(a.store.ID(pos)) {
		a.passed.Visit(pos)
		return true
	}
	return false
}

func (a *acceptor) release() {
	if a.seen != nil {
		a.pool.Put(a.seen)
		a.pool.Put(a.passed)
	}
}

// BruteSearch performs an exhaustive scan over live entries, used as ground truth.
func (h *HNSW) BruteSearch(query []float32, k int, filter index.Filter) ([]index.SearchResult, error) {
	if err := index.ValidateSearch(h.store, query, k); err != nil {
		return nil, err
	}
	score := index.NewScorer(h.dist, h.opts.Metric, h.store, query)
	top := index.NewTopK(min(k, h.store.Len()))
	for pos, e := range h.store.All() {
		if filter.Accept(e.ID) {
			top.Push(pos, score(pos))
		}
	}
	return top.Results(h.store), nil
}

// EncodeBinary implements index.Index.
func (h *HNSW) EncodeBinary(enc *persistence.Encoder) error {
	return h.encodeGraph(enc)
}
