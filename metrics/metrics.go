// Package metrics exports the microphone state for Prometheus.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"micmute/log"
)

type Metrics struct {
	reg     *prometheus.Registry
	muted   prometheus.Gauge
	active  prometheus.Gauge
	level   prometheus.Gauge
	toggles *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		muted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "micmute_muted",
			Help: "1 when the default input is muted or absent",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "micmute_active",
			Help: "1 when an application is recording from the default input",
		}),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "micmute_level",
			Help: "Default input volume as a fraction of normal",
		}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "micmute_toggles_total",
			Help: "Toggle triggers by origin",
		}, []string{"path"}),
	}
	m.reg.MustRegister(m.muted, m.active, m.level, m.toggles)
	return m
}

func boolGauge(g prometheus.Gauge, v bool) {
	if v {
		g.Set(1)
	} else {
		g.Set(0)
	}
}

func (m *Metrics) SetMuted(muted bool, level float64) {
	boolGauge(m.muted, muted)
	m.level.Set(level)
}

func (m *Metrics) SetActive(active bool) { boolGauge(m.active, active) }

// Toggle counts a trigger; path is "hotkey", "tray" or "tui".
func (m *Metrics) Toggle(path string) { m.toggles.WithLabelValues(path).Inc() }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Serve listens on addr until ctx is done. The listener is bound before
// Serve returns, so a bad address is reported to the caller.
func (m *Metrics) Serve(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warnf("metrics server: %v", err)
		}
	}()

	log.Infof("metrics on http://%s/metrics", ln.Addr())
	return ln.Addr(), nil
}
