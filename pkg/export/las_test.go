package export

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/edaniels/lidario"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcdconvert/pkg/pcd"
)

func readLAS(t *testing.T, path string) (*lidario.LasFile, func()) {
	t.Helper()
	lf, err := lidario.NewLasFile(path, "r")
	require.NoError(t, err)
	return lf, func() { require.NoError(t, lf.Close()) }
}

func TestLASExporter(t *testing.T) {
	cloud := xyziCloud(20)
	path := filepath.Join(t.TempDir(), "out.las")

	res, err := LASExporter{}.Export(path, cloud, Options{SampleSize: 5})
	require.NoError(t, err)
	assert.Equal(t, Result{Points: 20, Total: 20}, res)

	lf, closeFn := readLAS(t, path)
	defer closeFn()
	assert.Equal(t, 20, lf.Header.NumberPoints)
	assert.EqualValues(t, 1, lf.Header.PointFormatID)
	assert.EqualValues(t, 1, lf.Header.VersionMajor)
	assert.EqualValues(t, 2, lf.Header.VersionMinor)
	assert.Equal(t, 0.01, lf.Header.XScaleFactor)
	assert.Equal(t, 0.01, lf.Header.YScaleFactor)
	assert.Equal(t, 0.01, lf.Header.ZScaleFactor)
	assert.InDelta(t, 0.0, lf.Header.MinX, 0.01)
	assert.InDelta(t, 1.9, lf.Header.MaxX, 0.01)
	assert.InDelta(t, 5.7, lf.Header.MaxZ, 0.01)

	for i := 0; i < lf.Header.NumberPoints; i++ {
		p, err := lf.LasPoint(i)
		require.NoError(t, err)
		data := p.PointData()
		src := cloud.Points[i]
		// coordinates are truncated to the 0.01 grid
		assert.InDelta(t, src[0], data.X, 0.02)
		assert.InDelta(t, src[1], data.Y, 0.02)
		assert.InDelta(t, src[2], data.Z, 0.02)
		assert.EqualValues(t, uint16(src[3]), data.Intensity)
	}
}

func TestLASExporterWithoutIntensityField(t *testing.T) {
	cloud := &pcd.PointCloud{
		Schema: &pcd.Schema{Fields: []pcd.FieldDescriptor{
			{Name: "x", Size: 4, Type: pcd.FieldFloat, Count: 1},
			{Name: "y", Size: 4, Type: pcd.FieldFloat, Count: 1},
			{Name: "z", Size: 4, Type: pcd.FieldFloat, Count: 1},
			{Name: "label", Size: 4, Type: pcd.FieldUint, Count: 1},
		}},
		Points: []pcd.PointRecord{{1, 2, 3, 99}, {4, 5, 6, 42}},
	}
	path := filepath.Join(t.TempDir(), "out.las")
	_, err := LASExporter{}.Export(path, cloud, Options{})
	require.NoError(t, err)

	lf, closeFn := readLAS(t, path)
	defer closeFn()
	require.Equal(t, 2, lf.Header.NumberPoints)
	for i := 0; i < 2; i++ {
		p, err := lf.LasPoint(i)
		require.NoError(t, err)
		assert.EqualValues(t, 0, p.PointData().Intensity)
	}
}

func TestLASExporterEmpty(t *testing.T) {
	_, err := LASExporter{}.Export(filepath.Join(t.TempDir(), "out.las"), xyziCloud(0), Options{})
	assert.True(t, errors.Is(err, ErrEmptyCloud))
}

func TestLASExporterSkipsNonFinite(t *testing.T) {
	cloud := xyziCloud(3)
	cloud.Points = append(cloud.Points,
		pcd.PointRecord{math.NaN(), math.NaN(), math.NaN(), 0},
		pcd.PointRecord{1, math.Inf(1), 2, 5},
	)
	path := filepath.Join(t.TempDir(), "out.las")

	res, err := LASExporter{}.Export(path, cloud, Options{})
	require.NoError(t, err)
	assert.Equal(t, Result{Points: 3, Total: 5, Skipped: 2}, res)
	assert.False(t, res.Sampled())

	lf, closeFn := readLAS(t, path)
	defer closeFn()
	require.Equal(t, 3, lf.Header.NumberPoints)
	assert.InDelta(t, 0.2, lf.Header.MaxX, 0.01)
	for i := 0; i < 3; i++ {
		p, err := lf.LasPoint(i)
		require.NoError(t, err)
		assert.InDelta(t, cloud.Points[i][0], p.PointData().X, 0.02)
	}
}

func TestLASExporterFailureLeavesNoFile(t *testing.T) {
	for _, tc := range []struct {
		name   string
		points []pcd.PointRecord
		want   error
	}{
		{"only nan points", []pcd.PointRecord{{math.NaN(), math.NaN(), math.NaN(), 1}}, ErrEmptyCloud},
		{"extent beyond int32 grid", []pcd.PointRecord{{0, 0, 0, 1}, {3e7, 0, 0, 1}}, ErrLASExtent},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cloud := xyziCloud(0)
			cloud.Points = tc.points
			path := filepath.Join(t.TempDir(), "out.las")

			_, err := LASExporter{}.Export(path, cloud, Options{})
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			_, err = os.Stat(path)
			assert.True(t, errors.Is(err, os.ErrNotExist))
		})
	}
}

func TestLASIntensity(t *testing.T) {
	assert.EqualValues(t, 0, lasIntensity(-3))
	assert.EqualValues(t, 12, lasIntensity(12.7))
	assert.EqualValues(t, 65535, lasIntensity(1e9))
}
