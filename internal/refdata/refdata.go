// Package refdata holds the static reference tables: items, trade hubs and
// the hub-to-hub jump graph. A Snapshot is built once at startup and is
// read-only afterwards.
package refdata

import (
	"sort"

	"github.com/mselser95/eve-trade-arb/pkg/types"
)

// JumpGraph maps source hub name -> destination hub name -> jump count.
// A missing entry means no known route.
type JumpGraph map[string]map[string]int

// Jumps returns the jump count from a to b and whether a route is known.
func (g JumpGraph) Jumps(from string, to string) (int, bool) {
	dests, ok := g[from]
	if !ok {
		return 0, false
	}
	jumps, ok := dests[to]
	if !ok || jumps < 0 {
		return 0, false
	}
	return jumps, true
}

// Snapshot is an immutable view of the reference tables.
type Snapshot struct {
	items     []types.Item
	itemIndex map[int32]int
	hubs      []types.Hub
	jumps     JumpGraph
	routes    []types.Route
}

// NewSnapshot builds a snapshot from already-parsed tables. Items are ordered
// by id and duplicate ids keep the first occurrence.
func NewSnapshot(items []types.Item, hubs []types.Hub, jumps JumpGraph) *Snapshot {
	s := &Snapshot{
		items:     make([]types.Item, 0, len(items)),
		itemIndex: make(map[int32]int, len(items)),
		hubs:      append([]types.Hub(nil), hubs...),
		jumps:     make(JumpGraph, len(jumps)),
	}

	for _, item := range items {
		if _, dup := s.itemIndex[item.ID]; dup {
			continue
		}
		s.itemIndex[item.ID] = -1
		s.items = append(s.items, item)
	}
	sort.SliceStable(s.items, func(i, j int) bool { return s.items[i].ID < s.items[j].ID })
	for i, item := range s.items {
		s.itemIndex[item.ID] = i
	}

	for from, dests := range jumps {
		copied := make(map[string]int, len(dests))
		for to, n := range dests {
			copied[to] = n
		}
		s.jumps[from] = copied
	}

	s.routes = buildRoutes(s.hubs, s.jumps)

	return s
}

// buildRoutes enumerates ordered pairs of distinct hubs, dropping same-region
// pairs and pairs without a jump-graph entry.
func buildRoutes(hubs []types.Hub, jumps JumpGraph) []types.Route {
	var routes []types.Route

	for i, from := range hubs {
		for j, to := range hubs {
			if i == j || from.RegionID == to.RegionID {
				continue
			}
			n, ok := jumps.Jumps(from.Name, to.Name)
			if !ok {
				continue
			}
			routes = append(routes, types.Route{From: from, To: to, Jumps: n})
		}
	}

	return routes
}

// Items returns the item table ordered by id. Callers must not modify it.
func (s *Snapshot) Items() []types.Item {
	return s.items
}

// Item looks up an item by id.
func (s *Snapshot) Item(id int32) (types.Item, bool) {
	i, ok := s.itemIndex[id]
	if !ok {
		return types.Item{}, false
	}
	return s.items[i], true
}

// Hubs returns the hub table in load order. Callers must not modify it.
func (s *Snapshot) Hubs() []types.Hub {
	return s.hubs
}

// Jumps returns the jump count between two hubs.
func (s *Snapshot) Jumps(from string, to string) (int, bool) {
	return s.jumps.Jumps(from, to)
}

// Routes returns every tradeable directed hub pair.
func (s *Snapshot) Routes() []types.Route {
	return s.routes
}

// Regions returns the distinct hub region ids in ascending order.
func (s *Snapshot) Regions() []int32 {
	seen := make(map[int32]struct{}, len(s.hubs))
	regions := make([]int32, 0, len(s.hubs))
	for _, hub := range s.hubs {
		if _, ok := seen[hub.RegionID]; ok {
			continue
		}
		seen[hub.RegionID] = struct{}{}
		regions = append(regions, hub.RegionID)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
	return regions
}

// Empty reports whether there is nothing to enumerate.
func (s *Snapshot) Empty() bool {
	return len(s.items) == 0 || len(s.routes) == 0
}
