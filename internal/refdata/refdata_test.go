package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mselser95/eve-trade-arb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testHubs() []types.Hub {
	return []types.Hub{
		{Name: "Jita", RegionID: 10000002},
		{Name: "Amarr", RegionID: 10000043},
		{Name: "Perimeter", RegionID: 10000002},
		{Name: "Dodixie", RegionID: 10000032},
	}
}

func TestSnapshot_Routes(t *testing.T) {
	jumps := JumpGraph{
		"Jita":      {"Amarr": 9, "Perimeter": 1},
		"Amarr":     {"Jita": 9},
		"Perimeter": {"Amarr": 10},
		"Dodixie":   {},
	}

	s := NewSnapshot(nil, testHubs(), jumps)
	routes := s.Routes()

	// Jita->Perimeter is same-region, Dodixie has no edges, Amarr->Perimeter unknown.
	require.Len(t, routes, 3)
	assert.Equal(t, types.Route{From: testHubs()[0], To: testHubs()[1], Jumps: 9}, routes[0])
	assert.Equal(t, types.Route{From: testHubs()[1], To: testHubs()[0], Jumps: 9}, routes[1])
	assert.Equal(t, types.Route{From: testHubs()[2], To: testHubs()[1], Jumps: 10}, routes[2])

	for _, r := range routes {
		assert.NotEqual(t, r.From.RegionID, r.To.RegionID)
	}
}

func TestSnapshot_ZeroJumpEntryIsARoute(t *testing.T) {
	hubs := []types.Hub{{Name: "A", RegionID: 1}, {Name: "B", RegionID: 2}}
	s := NewSnapshot(nil, hubs, JumpGraph{"A": {"B": 0}})

	require.Len(t, s.Routes(), 1)
	assert.Equal(t, 0, s.Routes()[0].Jumps)

	_, ok := s.Jumps("B", "A")
	assert.False(t, ok, "missing entry must not read as zero jumps")
}

func TestSnapshot_ItemsOrderedAndDeduplicated(t *testing.T) {
	items := []types.Item{
		{ID: 35, Name: "Pyerite"},
		{ID: 34, Name: "Tritanium"},
		{ID: 35, Name: "Duplicate"},
	}

	s := NewSnapshot(items, nil, nil)

	require.Len(t, s.Items(), 2)
	assert.Equal(t, int32(34), s.Items()[0].ID)
	assert.Equal(t, int32(35), s.Items()[1].ID)

	item, ok := s.Item(35)
	require.True(t, ok)
	assert.Equal(t, "Pyerite", item.Name)

	_, ok = s.Item(36)
	assert.False(t, ok)
}

func TestSnapshot_Regions(t *testing.T) {
	s := NewSnapshot(nil, testHubs(), nil)
	assert.Equal(t, []int32{10000002, 10000032, 10000043}, s.Regions())
}

func TestSnapshot_IsolatedFromInput(t *testing.T) {
	hubs := testHubs()
	jumps := JumpGraph{"Jita": {"Amarr": 9}}

	s := NewSnapshot(nil, hubs, jumps)
	hubs[0].Name = "Changed"
	jumps["Jita"]["Amarr"] = 1

	assert.Equal(t, "Jita", s.Hubs()[0].Name)
	n, ok := s.Jumps("Jita", "Amarr")
	require.True(t, ok)
	assert.Equal(t, 9, n)
}

func TestLoad_MissingFilesYieldEmptySnapshot(t *testing.T) {
	s, err := Load(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	assert.Empty(t, s.Items())
	assert.Empty(t, s.Hubs())
	assert.Empty(t, s.Routes())
	assert.True(t, s.Empty())
}

func TestLoad_ReadsFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ItemsFile, `[{"id":34,"name":"Tritanium","volume":0.01},{"id":99,"name":"Mystery","volume":null}]`)
	writeFile(t, dir, HubsFile, `[{"name":"Jita","region_id":10000002},{"name":"Amarr","region_id":10000043}]`)
	writeFile(t, dir, JumpGraphFile, `{"Jita":{"Amarr":9},"Amarr":{"Jita":9}}`)

	s, err := Load(dir, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, s.Items(), 2)
	require.NotNil(t, s.Items()[0].Volume)
	assert.InDelta(t, 0.01, *s.Items()[0].Volume, 1e-12)
	assert.Nil(t, s.Items()[1].Volume)
	assert.Len(t, s.Routes(), 2)
	assert.False(t, s.Empty())
}

func TestLoad_PartialFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, HubsFile, `[{"name":"Jita","region_id":10000002}]`)

	s, err := Load(dir, zap.NewNop())
	require.NoError(t, err)

	assert.Empty(t, s.Items())
	assert.Len(t, s.Hubs(), 1)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ItemsFile, `{not json`)

	_, err := Load(dir, zap.NewNop())
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir string, name string, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600)
	require.NoError(t, err)
}
