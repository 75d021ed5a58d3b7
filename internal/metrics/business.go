package metrics

// Task operation results
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// IncrementBoardsGenerated increments the board generation counter
func (m *Metrics) IncrementBoardsGenerated() {
	m.safeExecute("IncrementBoardsGenerated", func() {
		m.BoardsGeneratedTotal.Inc()
	})
}

// AddStoriesSuggested adds n suggested stories
func (m *Metrics) AddStoriesSuggested(n int) {
	m.safeExecute("AddStoriesSuggested", func() {
		m.StoriesSuggestedTotal.Add(float64(n))
	})
}

// IncrementTipsServed increments the tip counter
func (m *Metrics) IncrementTipsServed() {
	m.safeExecute("IncrementTipsServed", func() {
		m.TipsServedTotal.Inc()
	})
}

// RecordTaskOperation counts a board mutation by outcome
func (m *Metrics) RecordTaskOperation(operation string, err error) {
	m.safeExecute("RecordTaskOperation", func() {
		result := ResultSuccess
		if err != nil {
			result = ResultError
		}
		m.TaskOperationsTotal.WithLabelValues(operation, result).Inc()
	})
}

// SetSessionsActive sets the stored sessions gauge
func (m *Metrics) SetSessionsActive(count int64) {
	m.safeExecute("SetSessionsActive", func() {
		m.SessionsActive.Set(float64(count))
	})
}

// AddSessionsExpired adds n sessions removed by cleanup
func (m *Metrics) AddSessionsExpired(n int) {
	m.safeExecute("AddSessionsExpired", func() {
		m.SessionsExpiredTotal.Add(float64(n))
	})
}
