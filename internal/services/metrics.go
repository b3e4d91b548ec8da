package services

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	OTPIssued        *prometheus.CounterVec
	OTPVerifications *prometheus.CounterVec
	KYCTransitions   *prometheus.CounterVec
	TaskTransitions  *prometheus.CounterVec
	LedgerOps        *prometheus.CounterVec
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		OTPIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logistics_otp_issued_total",
				Help: "OTP issuance attempts by outcome.",
			},
			[]string{"result"},
		),
		OTPVerifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logistics_otp_verifications_total",
				Help: "OTP verification attempts by outcome.",
			},
			[]string{"result"},
		),
		KYCTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logistics_kyc_transitions_total",
				Help: "KYC status transitions by target status.",
			},
			[]string{"status"},
		),
		TaskTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logistics_task_transitions_total",
				Help: "Task lifecycle transitions by target status.",
			},
			[]string{"status"},
		),
		LedgerOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logistics_ledger_operations_total",
				Help: "Wallet ledger operations by type and outcome.",
			},
			[]string{"operation", "result"},
		),
	}

	registry.MustRegister(m.OTPIssued, m.OTPVerifications, m.KYCTransitions, m.TaskTransitions, m.LedgerOps)
	return m
}

func (m *Metrics) otpIssued(result string) {
	if m == nil {
		return
	}
	m.OTPIssued.WithLabelValues(result).Inc()
}

func (m *Metrics) otpVerified(result string) {
	if m == nil {
		return
	}
	m.OTPVerifications.WithLabelValues(result).Inc()
}

func (m *Metrics) kycTransition(status string) {
	if m == nil {
		return
	}
	m.KYCTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) taskTransition(status string) {
	if m == nil {
		return
	}
	m.TaskTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) ledgerOp(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.LedgerOps.WithLabelValues(operation, result).Inc()
}
