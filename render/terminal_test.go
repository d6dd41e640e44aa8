package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rocketsim/controller"
	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/resource"
	"github.com/hupe1980/rocketsim/subsystem"
)

type named string

func (n named) Name() string { return string(n) }

func snapshot() controller.Snapshot {
	return controller.Snapshot{
		Resources: []resource.Snapshot{
			{Name: "Fuel", Amount: 1000, MaxCapacity: 1000},
			{Name: "Oxygen", Amount: 10, MaxCapacity: 50},
		},
		Subsystems: []subsystem.Snapshot{
			{Name: "Propulsion", Status: subsystem.StatusSlow},
			{Name: "Crew", Status: subsystem.StatusStandard},
		},
	}
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, WithoutANSI()).Render(snapshot())

	want := strings.Join([]string{
		"Current Resource Amounts:",
		"-------------------------",
		"Fuel: 1000 / 1000",
		"Oxygen: 10 / 50 (LOW)",
		"",
		"System Statuses:",
		"----------------",
		"Propulsion: SLOW",
		"Crew: STANDARD",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestRenderANSI(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Render(snapshot())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, ansiClear+ansiHome))
	assert.Contains(t, out, ansiLnClr+"Fuel: 1000 / 1000\n")
	assert.Contains(t, out, ansiYellow+"Oxygen: 10 / 50 (LOW)"+ansiReset)
}

func TestRenderLowThreshold(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, WithoutANSI(), WithLowThreshold(0.1)).Render(snapshot())
	assert.NotContains(t, buf.String(), "(LOW)")
}

func TestRenderEvent(t *testing.T) {
	oxygen, err := resource.New("Oxygen", 0, 50)
	require.NoError(t, err)

	var buf bytes.Buffer
	New(&buf, WithoutANSI()).RenderEvent(event.New(named("Crew"), oxygen, resource.StatusEmpty, event.PriorityHigh, 0))

	assert.Equal(t, "Event: [Crew] Resource [Oxygen : 0] Status [EMPTY]\n", buf.String())
}
