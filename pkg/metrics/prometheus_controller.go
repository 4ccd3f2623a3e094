package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EditDecisions counts permission-check outcomes by result
// (free, approval_required).
var EditDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "workplan_edit_decisions_total",
	Help: "Task edit permission decisions by outcome.",
}, []string{"outcome"})

// ChangeRequestResolutions counts governance resolutions by action.
var ChangeRequestResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "workplan_change_request_resolutions_total",
	Help: "Change request resolutions by action.",
}, []string{"action"})

type PrometheusController struct {
	path string
}

func NewPrometheusController(path string) *PrometheusController {
	if path == "" {
		path = "/debug/prometheus"
	}
	return &PrometheusController{path: path}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.Handler()).Methods(http.MethodGet)
}
