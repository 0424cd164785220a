package loaders

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/opticore/opticore/pkg/ray"
)

// snapshotDump is the on-disk layout of a trace dump: one record per surface
// index, in pipeline order.
type snapshotDump struct {
	Surfaces []ray.Snapshot `json:"surfaces"`
}

// WriteSnapshots writes the per-surface trace records as gzip-compressed
// JSON. The dump is what downstream analyses consume when they run out of
// process.
func WriteSnapshots(w io.Writer, snapshots []ray.Snapshot) error {
	zw := gzip.NewWriter(w)
	enc := json.NewEncoder(zw)
	if err := enc.Encode(snapshotDump{Surfaces: snapshots}); err != nil {
		zw.Close()
		return fmt.Errorf("loaders: encoding snapshots: %w", err)
	}
	return zw.Close()
}

// ReadSnapshots reads a dump written by WriteSnapshots.
func ReadSnapshots(r io.Reader) ([]ray.Snapshot, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("loaders: opening snapshot dump: %w", err)
	}
	defer zr.Close()

	var dump snapshotDump
	if err := json.NewDecoder(zr).Decode(&dump); err != nil {
		return nil, fmt.Errorf("loaders: decoding snapshots: %w", err)
	}
	return dump.Surfaces, nil
}
