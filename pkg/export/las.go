package export

import (
	"math"
	"os"

	"github.com/edaniels/lidario"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"

	"pcdconvert/pkg/pcd"
)

const (
	lasScale         = 0.01
	lasPointFormatID = 1
	lasVersionMinor  = 2
	// byte offset of the minor version in the public header block
	lasVersionMinorOffset = 25
)

// ErrLASExtent is returned when a cloud spans more than the int32 range of
// LAS coordinates at the fixed 0.01 scale.
var ErrLASExtent = errors.New("point cloud extent exceeds las coordinate range")

// LASExporter writes a LAS 1.2 file with point format 1 and a 0.01 scale on
// every axis. Intensity is only written when the schema has a field named
// intensity. Points with non-finite coordinates are skipped. LAS output is
// never sampled.
type LASExporter struct{}

func (LASExporter) Export(path string, cloud *pcd.PointCloud, _ Options) (res Result, err error) {
	axes := pcd.ResolveAxes(cloud.Schema)
	points := finitePoints(cloud.Points, axes)
	if len(points) == 0 {
		return Result{}, ErrEmptyCloud
	}
	vs := make([]r3.Vector, len(points))
	for i, p := range points {
		vs[i] = axes.Vector(p)
	}
	xs, ys, zs := pcd.Columns(vs)
	for _, col := range [][]float64{xs, ys, zs} {
		if (floats.Max(col)-floats.Min(col))/lasScale > math.MaxInt32 {
			return Result{}, ErrLASExtent
		}
	}

	lf, err := lidario.NewLasFile(path, "w")
	if err != nil {
		return Result{}, errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(path))
		}
	}()

	if err = writeLASPoints(lf, points, axes, xs, ys, zs); err != nil {
		return Result{}, multierr.Append(err, lf.Close())
	}
	if err = lf.Close(); err != nil {
		return Result{}, errors.Wrapf(err, "write %s", path)
	}
	if err = stampLASVersion(path); err != nil {
		return Result{}, err
	}
	return Result{Points: len(points), Total: len(cloud.Points), Skipped: len(cloud.Points) - len(points)}, nil
}

func writeLASPoints(lf *lidario.LasFile, points []pcd.PointRecord, axes pcd.Axes, xs, ys, zs []float64) error {
	if err := lf.AddHeader(lidario.LasHeader{PointFormatID: lasPointFormatID}); err != nil {
		return errors.Wrap(err, "write las header")
	}
	// AddHeader resets the scale; write keeps any non-zero value.
	lf.Header.XScaleFactor = lasScale
	lf.Header.YScaleFactor = lasScale
	lf.Header.ZScaleFactor = lasScale

	for i, p := range points {
		pr0 := &lidario.PointRecord0{
			X: xs[i],
			Y: ys[i],
			Z: zs[i],
			BitField: lidario.PointBitField{
				Value: (1) | (1 << 3),
			},
			PointSourceID: 1,
		}
		if axes.HasIntensity {
			pr0.Intensity = lasIntensity(axes.IntensityOf(p))
		}
		if err := lf.AddLasPoint(&lidario.PointRecord1{PointRecord0: pr0}); err != nil {
			return errors.Wrapf(err, "write las point %d", i)
		}
	}
	return nil
}

// stampLASVersion rewrites the minor version byte of a closed LAS file.
// lidario always writes 1.3; the trailing waveform offset it adds past the
// 1.2 header fields is covered by the header size and point offset.
func stampLASVersion(path string) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	_, err = f.WriteAt([]byte{lasVersionMinor}, lasVersionMinorOffset)
	return errors.Wrapf(err, "stamp las version %s", path)
}

// lasIntensity clamps v into the uint16 range LAS stores intensity in.
func lasIntensity(v float64) uint16 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(v)
	}
}
