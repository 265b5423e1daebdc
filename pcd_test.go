package pcdconvert_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcdconvert/pkg/export"
	"pcdconvert/pkg/pcd"
)

func TestDecodePCDToJSON(t *testing.T) {
	var b strings.Builder
	b.WriteString("VERSION 0.7\nFIELDS x y z intensity\nSIZE 4 4 4 4\nTYPE F F F F\nCOUNT 1 1 1 1\n" +
		"WIDTH 100\nHEIGHT 1\nPOINTS 100\nVIEWPOINT 0 0 0 1 0 0 0\nDATA ascii\n")
	var lines [][]string
	for i := 0; i < 100; i++ {
		f := float64(i)
		line := []string{fmt.Sprint(f * 0.1), fmt.Sprint(f * 0.2), fmt.Sprint(f * 0.3), fmt.Sprint(f * 10)}
		lines = append(lines, line)
		b.WriteString(strings.Join(line, " ") + "\n")
	}
	dir := t.TempDir()
	in := filepath.Join(dir, "test-small.pcd")
	require.NoError(t, os.WriteFile(in, []byte(b.String()), 0o644))

	cloud, err := pcd.Open(in)
	require.NoError(t, err)
	require.Len(t, cloud.Points, 100)

	out := export.DefaultOutputPath(in, export.FormatJSON)
	res, err := export.JSONExporter{}.Export(out, cloud, export.Options{})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Points)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc struct {
		Points int                  `json:"points"`
		Data   []map[string]float64 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 100, doc.Points)
	require.Len(t, doc.Data, 100)
	for i, rec := range doc.Data {
		for j, key := range []string{"x", "y", "z", "intensity"} {
			want, err := strconv.ParseFloat(lines[i][j], 64)
			require.NoError(t, err)
			assert.Equal(t, want, rec[key], "point %d %s", i, key)
		}
	}
}
