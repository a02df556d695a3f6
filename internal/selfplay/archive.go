package selfplay

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// TurnRow is one turn of a played game, stored one row per turn.
// PositionID is the position after the turn; Winner is empty when the game
// hit the turn limit.
type TurnRow struct {
	GameID     string   `parquet:"game_id,dict"`
	Variant    string   `parquet:"variant,dict"`
	Turn       int32    `parquet:"turn"`
	Color      string   `parquet:"color,dict"`
	Die1       int32    `parquet:"die1"`
	Die2       int32    `parquet:"die2"`
	Moves      []string `parquet:"moves,list"`
	PositionID string   `parquet:"position_id"`
	Winner     string   `parquet:"winner,dict"`
}

// ArchiveSchema is stored in the file metadata under "schema".
const ArchiveSchema = "tablabaki_turn_v1"

// WriteArchive writes rows to outPath as zstd-compressed parquet. The file
// is written next to outPath and renamed into place.
func WriteArchive(outPath string, rows []TurnRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", ArchiveSchema),
	); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadArchive loads every row of an archive.
func ReadArchive(path string) ([]TurnRow, error) {
	rows, err := parquet.ReadFile[TurnRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}

// Rows flattens the turn rows of results in game order.
func Rows(results []Result) []TurnRow {
	n := 0
	for _, r := range results {
		n += len(r.Rows)
	}
	out := make([]TurnRow, 0, n)
	for _, r := range results {
		out = append(out, r.Rows...)
	}
	return out
}
