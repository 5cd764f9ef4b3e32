package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	chargeCount  map[string]int64
	chargeTotal  map[string]int64
	refusalCount map[string]int64

	balance    int64
	hasBalance bool
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		chargeCount:  make(map[string]int64),
		chargeTotal:  make(map[string]int64),
		refusalCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordCharge tracks a completed debit for a paid operation.
func (m *Metrics) RecordCharge(operation string, price int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chargeCount[operation]++
	m.chargeTotal[operation] += int64(price)
}

// RecordRefusal tracks a refused paid operation by reason.
func (m *Metrics) RecordRefusal(operation, reason string) {
	if m == nil {
		return
	}
	key := operation + "|" + reason
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refusalCount[key]++
}

// SetBalance records the current profile balance gauge.
func (m *Metrics) SetBalance(balance int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = int64(balance)
	m.hasBalance = true
}

// ClearBalance drops the balance gauge when no profile is resolved.
func (m *Metrics) ClearBalance() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = 0
	m.hasBalance = false
}

// Balance reports the gauge and whether a profile is currently resolved.
func (m *Metrics) Balance() (int64, bool) {
	if m == nil {
		return 0, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance, m.hasBalance
}

// ChargeCount returns how many debits completed for an operation.
func (m *Metrics) ChargeCount(operation string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chargeCount[operation]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
