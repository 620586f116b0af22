package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/swarmfield/internal/geom"
	"github.com/san-kum/swarmfield/internal/obstacle"
	"github.com/san-kum/swarmfield/internal/storage"
)

func scene() Scene {
	rows := []storage.TrajectoryRow{
		{Time: 0, Agent: "cf1", Setpoint: geom.Vec3{X: -1, Y: 1, Z: 1}, Target: geom.Vec3{X: 1, Y: -1, Z: 1}},
		{Time: 0, Agent: "cf2", Setpoint: geom.Vec3{X: -1.3, Y: 1, Z: 1}, Target: geom.Vec3{X: 1, Y: -1, Z: 1}},
		{Time: 1, Agent: "cf1", Setpoint: geom.Vec3{X: 0.5, Y: -0.5, Z: 1}, Target: geom.Vec3{X: 1, Y: -1, Z: 1}},
		{Time: 1, Agent: "cf2", Setpoint: geom.Vec3{X: 0.2, Y: -0.5, Z: 1}, Target: geom.Vec3{X: 1, Y: -1, Z: 1}},
	}
	obs := []obstacle.Obstacle{{ID: "o1", Position: geom.Vec2{X: 2}, Radius: 0.5}}
	return FromTrajectory("crossing <test>", rows, obs)
}

func TestFromTrajectory(t *testing.T) {
	s := scene()
	require.Len(t, s.Paths, 2)
	assert.Equal(t, "cf1", s.Paths[0].ID)
	assert.Len(t, s.Paths[1].Points, 2)
	assert.True(t, s.HasGoal)
	assert.Equal(t, geom.Vec2{X: 1, Y: -1}, s.Goal)

	lo, hi := s.Bounds()
	assert.InDelta(t, -1.3, lo.X, 1e-12)
	assert.InDelta(t, 2.5, hi.X, 1e-12)
	assert.InDelta(t, -1, lo.Y, 1e-12)
	assert.InDelta(t, 1, hi.Y, 1e-12)
}

func TestEmptySceneBounds(t *testing.T) {
	lo, hi := Scene{}.Bounds()
	assert.Equal(t, geom.Vec2{X: -1, Y: -1}, lo)
	assert.Equal(t, geom.Vec2{X: 1, Y: 1}, hi)
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, scene(), 400, 300))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `width="400" height="300"`)
	assert.Equal(t, 1, strings.Count(out, "<ellipse"))
	assert.Contains(t, out, `id="cf1"`)
	assert.Contains(t, out, `id="cf2"`)
	assert.Contains(t, out, "crossing &lt;test&gt;")
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestWritePlotPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlot(&buf, scene(), "png"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestSavePlot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "run.svg")
	require.NoError(t, SavePlot(file, scene()))
	assert.FileExists(t, file)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, scene()))
	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "cf2")
	assert.Contains(t, out, "obstacles")
}
