package multiview

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// MockSource produces the illustrative figures shown on panels. Nothing here
// reflects real mining or wallet state.
type MockSource struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewMockSource seeds a source. Equal seeds give equal figures.
func NewMockSource(seed uint64) *MockSource {
	return &MockSource{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// NewRandomMockSource seeds a source from the runtime generator.
func NewRandomMockSource() *MockSource {
	return NewMockSource(rand.Uint64())
}

func (m *MockSource) float(min, max float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return min + m.rng.Float64()*(max-min)
}

func (m *MockSource) intn(min, max int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return min + m.rng.IntN(max-min+1)
}

func (m *MockSource) pick(values []string) string {
	return values[m.intn(0, len(values)-1)]
}

var (
	rigStatuses    = []string{"online", "online", "online", "warning", "offline"}
	txKinds        = []string{"payout", "deposit", "withdrawal", "pool fee"}
	activityActors = []string{"ghost-0412", "admin", "ghost-1187", "scheduler", "ghost-0093"}
	activityVerbs  = []string{"started rig", "claimed payout", "updated wallet", "joined pool", "refueled garden"}
	tickerSymbols  = []string{"BTC", "ETH", "LTC", "XMR", "KAS"}
)

func (m *MockSource) hardwareRows(count int) [][]string {
	rows := make([][]string, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("Rig-%02d", i+1),
			fmt.Sprintf("%.1f TH/s", m.float(80, 140)),
			fmt.Sprintf("%d°C", m.intn(55, 85)),
			m.pick(rigStatuses),
		})
	}
	return rows
}

func (m *MockSource) transactionRows(count int) [][]string {
	rows := make([][]string, 0, count)
	now := m.now()
	for i := 0; i < count; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("0x%08x", m.intn(0, 1<<30)),
			m.pick(txKinds),
			fmt.Sprintf("%.5f BTC", m.float(0.0001, 0.05)),
			now.Add(-time.Duration(m.intn(1, 240)) * time.Minute).Format(time.Kitchen),
		})
	}
	return rows
}

func (m *MockSource) activityRows(count int) [][]string {
	rows := make([][]string, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, []string{
			m.pick(activityActors),
			m.pick(activityVerbs),
			fmt.Sprintf("%dm ago", m.intn(1, 59)),
		})
	}
	return rows
}

func (m *MockSource) tickerRows() [][]string {
	rows := make([][]string, 0, len(tickerSymbols))
	for _, symbol := range tickerSymbols {
		rows = append(rows, []string{
			symbol,
			fmt.Sprintf("$%.2f", m.float(10, 70000)),
			fmt.Sprintf("%+.2f%%", m.float(-8, 8)),
		})
	}
	return rows
}

func (m *MockSource) series(count int, min, max float64) []ChartPoint {
	points := make([]ChartPoint, 0, count)
	now := m.now()
	for i := count - 1; i >= 0; i-- {
		points = append(points, ChartPoint{
			Label: now.Add(-time.Duration(i) * time.Hour).Format("15:04"),
			Value: m.float(min, max),
		})
	}
	return points
}
