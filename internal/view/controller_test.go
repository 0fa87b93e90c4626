package view

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txdash/internal/core"
	"txdash/internal/log"
	"txdash/internal/query"
	"txdash/internal/source/memory"
)

type fakeTable struct{ rows []Row }

func (t *fakeTable) Clear()          { t.rows = nil }
func (t *fakeTable) AppendRow(r Row) { t.rows = append(t.rows, r) }

func (t *fakeTable) amounts() []string {
	out := make([]string, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r.Amount)
	}
	return out
}

type fakeChart struct {
	points    []query.Point
	destroyed bool
}

func (c *fakeChart) Destroy() { c.destroyed = true }

type fakeSurface struct {
	drawn []*fakeChart
	err   error
}

func (s *fakeSurface) Draw(points []query.Point) (Chart, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := &fakeChart{points: points}
	s.drawn = append(s.drawn, c)
	return c, nil
}

func (s *fakeSurface) live() int {
	n := 0
	for _, c := range s.drawn {
		if !c.destroyed {
			n++
		}
	}
	return n
}

func (s *fakeSurface) current() *fakeChart { return s.drawn[len(s.drawn)-1] }

type fakeBack struct{ visible bool }

func (b *fakeBack) SetVisible(v bool) { b.visible = v }

type harness struct {
	ctrl    *Controller
	table   *fakeTable
	surface *fakeSurface
	back    *fakeBack
}

func newHarness(t *testing.T, ds *core.Dataset) harness {
	t.Helper()
	h := harness{table: &fakeTable{}, surface: &fakeSurface{}, back: &fakeBack{visible: true}}
	ctrl, err := NewController(ds, Surfaces{Table: h.table, Chart: h.surface, Back: h.back}, log.Discard())
	require.NoError(t, err)
	h.ctrl = ctrl
	require.NoError(t, ctrl.Init())
	return h
}

func TestInitRendersEverything(t *testing.T) {
	h := newHarness(t, memory.Fallback())

	assert.Len(t, h.table.rows, 9)
	assert.False(t, h.back.visible)
	assert.Equal(t, AllMode(), h.ctrl.Mode())

	pts := h.surface.current().points
	require.Len(t, pts, 2)
	assert.Equal(t, "2022-01-01", pts[0].Date)
	assert.True(t, pts[0].Amount.Equal(decimal.NewFromInt(5300)))
	assert.Equal(t, "2022-01-02", pts[1].Date)
	assert.True(t, pts[1].Amount.Equal(decimal.NewFromInt(5425)))
}

func TestSearchScenario(t *testing.T) {
	h := newHarness(t, memory.Fallback())

	require.NoError(t, h.ctrl.OnFilterInput("1000"))

	require.Len(t, h.table.rows, 1)
	row := h.table.rows[0]
	assert.Equal(t, "Ahmed Ali", row.CustomerName)
	assert.Equal(t, "2022-01-01", row.Date)
	assert.Equal(t, "1000", row.Amount)
	assert.Equal(t, 1, row.CustomerID)

	require.NoError(t, h.ctrl.OnFilterInput("  "))
	assert.Len(t, h.table.rows, 9)
}

func TestCustomerFocusAndBack(t *testing.T) {
	h := newHarness(t, memory.Fallback())

	require.NoError(t, h.ctrl.OnCustomerActivated(2))
	assert.Equal(t, FocusMode(2), h.ctrl.Mode())
	assert.Equal(t, []string{"550", "1300"}, h.table.amounts())
	for _, r := range h.table.rows {
		assert.Equal(t, 2, r.CustomerID)
	}
	assert.True(t, h.back.visible)

	require.NoError(t, h.ctrl.OnBackActivated())
	assert.Equal(t, AllMode(), h.ctrl.Mode())
	assert.Len(t, h.table.rows, 9)
	assert.False(t, h.back.visible)
}

func TestFocusedViewIgnoresFilterInput(t *testing.T) {
	h := newHarness(t, memory.Fallback())

	require.NoError(t, h.ctrl.OnFilterInput("mina"))
	assert.Len(t, h.table.rows, 2)

	require.NoError(t, h.ctrl.OnCustomerActivated(5))
	require.NoError(t, h.ctrl.OnFilterInput("ahmed"))
	assert.Equal(t, []string{"2500", "875"}, h.table.amounts())
	assert.Equal(t, "ahmed", h.ctrl.Term())
	assert.True(t, h.back.visible)

	// Back shows the whole dataset; the stored term applies on the next input.
	require.NoError(t, h.ctrl.OnBackActivated())
	assert.Len(t, h.table.rows, 9)
	assert.Equal(t, "ahmed", h.ctrl.Term())
}

func TestChartReplacedOnEveryRender(t *testing.T) {
	h := newHarness(t, memory.Fallback())

	require.NoError(t, h.ctrl.OnFilterInput("a"))
	require.NoError(t, h.ctrl.OnCustomerActivated(1))
	require.NoError(t, h.ctrl.OnBackActivated())

	assert.Len(t, h.surface.drawn, 4)
	assert.Equal(t, 1, h.surface.live(), "only the latest chart may stay alive")
	assert.False(t, h.surface.current().destroyed)

	h.ctrl.Close()
	assert.Equal(t, 0, h.surface.live())
}

func TestUnknownCustomerFocusIsEmpty(t *testing.T) {
	h := newHarness(t, memory.Fallback())

	require.NoError(t, h.ctrl.OnCustomerActivated(99))
	assert.Empty(t, h.table.rows)
	assert.Empty(t, h.surface.current().points)
	assert.True(t, h.back.visible)
}

func TestRenderSkipsOrphans(t *testing.T) {
	ds := memory.Fallback()
	ds.Transactions = append(ds.Transactions, core.Transaction{ID: 10, CustomerID: 77, Date: "2022-01-03", Amount: decimal.NewFromInt(5)})

	h := newHarness(t, ds)

	assert.Len(t, h.table.rows, 9)
	assert.Len(t, h.ctrl.Visible(), 9)
	assert.Len(t, h.surface.current().points, 2, "orphan date must not reach the chart")
}

func TestFilterLogsOrphansThroughControllerLogger(t *testing.T) {
	ds := memory.Fallback()
	ds.Transactions = append(ds.Transactions, core.Transaction{ID: 10, CustomerID: 77, Date: "2022-01-03", Amount: decimal.NewFromInt(1000)})

	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Output: &buf})
	ctrl, err := NewController(ds, Surfaces{Table: &fakeTable{}, Chart: &fakeSurface{}, Back: &fakeBack{}}, logger)
	require.NoError(t, err)
	require.NoError(t, ctrl.Init())

	buf.Reset()
	require.NoError(t, ctrl.OnFilterInput("1000"))

	assert.Len(t, ctrl.Visible(), 1)
	out := buf.String()
	assert.Contains(t, out, "Transaction references unknown customer, skipped")
	assert.Contains(t, out, "component=view")
	assert.Contains(t, out, "transaction_id=10")
}

func TestRenderPropagatesChartErrors(t *testing.T) {
	surface := &fakeSurface{err: errors.New("no canvas")}
	ctrl, err := NewController(memory.Fallback(), Surfaces{Table: &fakeTable{}, Chart: surface, Back: &fakeBack{}}, log.Discard())
	require.NoError(t, err)

	assert.Error(t, ctrl.Init())
}

func TestNewControllerValidation(t *testing.T) {
	_, err := NewController(nil, Surfaces{}, nil)
	assert.Error(t, err)

	_, err = NewController(memory.Fallback(), Surfaces{Table: &fakeTable{}}, nil)
	assert.Error(t, err)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "all_transactions", AllMode().String())
	assert.Equal(t, "customer_focused(2)", FocusMode(2).String())
}
