package observability

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"sync"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raywall/fast-fetch-toolkit/pkg/config"
	"github.com/raywall/fast-fetch-toolkit/pkg/metrics"
)

// NoopProvider é um placeholder para quando métricas estão desabilitadas.
type NoopProvider struct{}

func (n *NoopProvider) Count(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Gauge(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Histogram(name string, value float64, tags []string) error { return nil }

// DatadogProvider adapta a lib oficial do Datadog para nossa interface.
type DatadogProvider struct {
	client *statsd.Client
}

func (d *DatadogProvider) Count(name string, value float64, tags []string) error {
	return d.client.Count(name, int64(value), tags, 1)
}

func (d *DatadogProvider) Gauge(name string, value float64, tags []string) error {
	return d.client.Gauge(name, value, tags, 1)
}

func (d *DatadogProvider) Histogram(name string, value float64, tags []string) error {
	return d.client.Histogram(name, value, tags, 1)
}

var invalidMetricChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// PrometheusProvider registra vetores sob demanda num registry próprio.
// As chaves das tags da primeira chamada definem os labels da métrica.
type PrometheusProvider struct {
	registry   *prometheus.Registry
	namespace  string
	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

func NewPrometheusProvider(namespace string) *PrometheusProvider {
	return &PrometheusProvider{
		registry:   prometheus.NewRegistry(),
		namespace:  invalidMetricChars.ReplaceAllString(namespace, "_"),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Handler expõe o registry no formato de exposição do Prometheus.
func (p *PrometheusProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry expõe o registry para coleta direta (testes e exporters).
func (p *PrometheusProvider) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusProvider) Count(name string, value float64, tags []string) error {
	keys, labels := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      metricName(name) + "_total",
			Help:      name,
		}, keys)
		if err := p.registry.Register(vec); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("falha ao registrar counter %s: %w", name, err)
		}
		p.counters[name] = vec
	}
	p.mu.Unlock()

	c, err := vec.GetMetricWith(labels)
	if err != nil {
		return err
	}
	c.Add(value)
	return nil
}

func (p *PrometheusProvider) Gauge(name string, value float64, tags []string) error {
	keys, labels := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      metricName(name),
			Help:      name,
		}, keys)
		if err := p.registry.Register(vec); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("falha ao registrar gauge %s: %w", name, err)
		}
		p.gauges[name] = vec
	}
	p.mu.Unlock()

	g, err := vec.GetMetricWith(labels)
	if err != nil {
		return err
	}
	g.Set(value)
	return nil
}

func (p *PrometheusProvider) Histogram(name string, value float64, tags []string) error {
	keys, labels := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      metricName(name),
			Help:      name,
			Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
		}, keys)
		if err := p.registry.Register(vec); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("falha ao registrar histogram %s: %w", name, err)
		}
		p.histograms[name] = vec
	}
	p.mu.Unlock()

	h, err := vec.GetMetricWith(labels)
	if err != nil {
		return err
	}
	h.Observe(value)
	return nil
}

func metricName(name string) string {
	return invalidMetricChars.ReplaceAllString(name, "_")
}

func splitTags(tags []string) ([]string, prometheus.Labels) {
	labels := prometheus.Labels{}
	for _, t := range tags {
		k, v := metrics.SplitTag(t)
		labels[metricName(k)] = v
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, labels
}

// MultiProvider replica as métricas para vários providers.
type MultiProvider []metrics.Provider

func (m MultiProvider) Count(name string, value float64, tags []string) error {
	var firstErr error
	for _, p := range m {
		if err := p.Count(name, value, tags); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m MultiProvider) Gauge(name string, value float64, tags []string) error {
	var firstErr error
	for _, p := range m {
		if err := p.Gauge(name, value, tags); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m MultiProvider) Histogram(name string, value float64, tags []string) error {
	var firstErr error
	for _, p := range m {
		if err := p.Histogram(name, value, tags); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SetupMetrics inicializa o provedor correto baseado no YAML.
// Quando Datadog e Prometheus estão habilitados as métricas vão para os dois.
func SetupMetrics(cfg config.MetricsConf) (metrics.Provider, error) {
	var providers MultiProvider

	if cfg.Datadog.Enabled {
		client, err := statsd.New(cfg.Datadog.Addr, statsd.WithNamespace(cfg.Datadog.Namespace))
		if err != nil {
			return nil, fmt.Errorf("falha ao conectar no datadog statsd: %w", err)
		}
		providers = append(providers, &DatadogProvider{client: client})
	}

	if cfg.Prometheus.Enabled {
		providers = append(providers, NewPrometheusProvider(cfg.Prometheus.Namespace))
	}

	switch len(providers) {
	case 0:
		return &NoopProvider{}, nil
	case 1:
		return providers[0], nil
	default:
		return providers, nil
	}
}

// PrometheusOf devolve o PrometheusProvider configurado, se houver (para expor /metrics).
func PrometheusOf(p metrics.Provider) (*PrometheusProvider, bool) {
	switch v := p.(type) {
	case *PrometheusProvider:
		return v, true
	case MultiProvider:
		for _, inner := range v {
			if prom, ok := inner.(*PrometheusProvider); ok {
				return prom, true
			}
		}
	}
	return nil, false
}
