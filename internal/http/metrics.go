package http

import (
	"sync/atomic"
	"time"
)

type appMetrics struct {
	transactionsCreated int64
	transactionsDeleted int64
	rejectedSubmissions int64
	uptime              time.Time
}

func newAppMetrics() *appMetrics {
	return &appMetrics{uptime: time.Now()}
}

func (m *appMetrics) created()  { atomic.AddInt64(&m.transactionsCreated, 1) }
func (m *appMetrics) deleted()  { atomic.AddInt64(&m.transactionsDeleted, 1) }
func (m *appMetrics) rejected() { atomic.AddInt64(&m.rejectedSubmissions, 1) }
