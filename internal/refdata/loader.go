package refdata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/mselser95/eve-trade-arb/pkg/types"
	"go.uber.org/zap"
)

const (
	ItemsFile     = "items.json"
	HubsFile      = "trade_hubs.json"
	JumpGraphFile = "jump_graph.json"
)

// Load reads the three reference files from dir. A missing file yields an
// empty table; a file that exists but cannot be parsed is an error.
func Load(dir string, logger *zap.Logger) (*Snapshot, error) {
	var items []types.Item
	found, err := readJSON(filepath.Join(dir, ItemsFile), &items)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	if !found {
		logger.Warn("reference-file-missing", zap.String("file", ItemsFile), zap.String("dir", dir))
	}

	var hubs []types.Hub
	found, err = readJSON(filepath.Join(dir, HubsFile), &hubs)
	if err != nil {
		return nil, fmt.Errorf("load trade hubs: %w", err)
	}
	if !found {
		logger.Warn("reference-file-missing", zap.String("file", HubsFile), zap.String("dir", dir))
	}

	var jumps JumpGraph
	found, err = readJSON(filepath.Join(dir, JumpGraphFile), &jumps)
	if err != nil {
		return nil, fmt.Errorf("load jump graph: %w", err)
	}
	if !found {
		logger.Warn("reference-file-missing", zap.String("file", JumpGraphFile), zap.String("dir", dir))
	}

	snapshot := NewSnapshot(items, hubs, jumps)

	ItemsLoaded.Set(float64(len(snapshot.Items())))
	HubsLoaded.Set(float64(len(snapshot.Hubs())))
	RoutesLoaded.Set(float64(len(snapshot.Routes())))

	logger.Info("reference-data-loaded",
		zap.String("dir", dir),
		zap.Int("items", len(snapshot.Items())),
		zap.Int("hubs", len(snapshot.Hubs())),
		zap.Int("routes", len(snapshot.Routes())))

	return snapshot, nil
}

func readJSON(path string, dst interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	err = json.Unmarshal(data, dst)
	if err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}

	return true, nil
}
