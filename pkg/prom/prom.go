package prom

import (
	"sync"

	xhttp "github.com/nimasrn/purchase-ledger/pkg/http"
	"github.com/nimasrn/purchase-ledger/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemPurchase     = "purchase"
	SystemCompensation = "compensation"
)

const (
	MetricPurchaseStepTotal           = "step_total"
	MetricPurchaseStepDurationSeconds = "step_duration_seconds"
	MetricCompensationTotal           = "total"
	MetricCompensationDuration        = "duration_seconds"
	MetricCompensationBacklog         = "backlog"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionGaugeVec = make(map[string]*prometheus.GaugeVec)
var MetricCollectionHistogram = make(map[string]prometheus.Histogram)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels
var registerer prometheus.Registerer = prometheus.DefaultRegisterer

// Create registers every purchase ledger metric and switches recording on.
func Create(host string, env string, nameSpace string) error {
	return CreateWithRegisterer(prometheus.DefaultRegisterer, host, env, nameSpace)
}

// CreateWithRegisterer is Create against a caller supplied registry.
func CreateWithRegisterer(reg prometheus.Registerer, host string, env string, nameSpace string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()

	registerer = reg
	defaultLabels = prometheus.Labels{"env": env, "instance": host}
	namespace = nameSpace

	stepTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: SystemPurchase, Name: MetricPurchaseStepTotal,
		Help:        "Purchase steps by outcome.",
		ConstLabels: defaultLabels,
	}, []string{"step", "outcome"})
	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: SystemPurchase, Name: MetricPurchaseStepDurationSeconds,
		Help:        "Time spent in one purchase step, unit of work included.",
		ConstLabels: defaultLabels,
	}, []string{"step"})
	compTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: SystemCompensation, Name: MetricCompensationTotal,
		Help:        "Compensations by outcome.",
		ConstLabels: defaultLabels,
	}, []string{"outcome"})
	compDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: SystemCompensation, Name: MetricCompensationDuration,
		Help:        "Time spent undoing one purchase.",
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	})
	backlog := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: SystemCompensation, Name: MetricCompensationBacklog,
		Help:        "Compensation stream messages by state.",
		ConstLabels: defaultLabels,
	}, []string{"state"})

	for _, c := range []prometheus.Collector{stepTotal, stepDuration, compTotal, compDuration, backlog} {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}

	MetricCollectionCounterVec[SystemPurchase+MetricPurchaseStepTotal] = stepTotal
	MetricCollectionHistogramVec[SystemPurchase+MetricPurchaseStepDurationSeconds] = stepDuration
	MetricCollectionCounterVec[SystemCompensation+MetricCompensationTotal] = compTotal
	MetricCollectionHistogram[SystemCompensation+MetricCompensationDuration] = compDuration
	MetricCollectionGaugeVec[SystemCompensation+MetricCompensationBacklog] = backlog
	MetricSystemEnabled = true
	return nil
}

func ListenAndServer(addr string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "addr", addr, "url", url)
	if err := s.ListenAndServe(addr); err != nil {
		logger.Panic("[metrics-server] http listen error", "error", err)
	}
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Inc()
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func SetGaugeVec(subsystem, name string, value float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionGaugeVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Set(value)
		return
	}
	logger.Warn("[metrics-server] gauge vec not found", "subsystem", subsystem, "name", name)
}

func AddHistogram(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogram[subsystem+name]; ok {
		v.Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram not found", "subsystem", subsystem, "name", name)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

// ObservePurchaseStep records one orchestrator step. outcome is "ok" or the
// error key of the failure.
func ObservePurchaseStep(step, outcome string, seconds float64) {
	IncCounterVec(SystemPurchase, MetricPurchaseStepTotal, step, outcome)
	AddHistogramVec(SystemPurchase, MetricPurchaseStepDurationSeconds, seconds, step)
}

func ObserveCompensation(outcome string, seconds float64) {
	IncCounterVec(SystemCompensation, MetricCompensationTotal, outcome)
	AddHistogram(SystemCompensation, MetricCompensationDuration, seconds)
}

func SetCompensationBacklog(pending, deadLetters int64) {
	SetGaugeVec(SystemCompensation, MetricCompensationBacklog, float64(pending), "pending")
	SetGaugeVec(SystemCompensation, MetricCompensationBacklog, float64(deadLetters), "dead_letter")
}
