package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	authRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"service", "result"},
	)

	authLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)

	tokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of tokens issued or refreshed.",
		},
		[]string{"service", "flow", "result"},
	)

	topicsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voting_topics_created_total",
			Help: "Total number of topics created.",
		},
		[]string{"service"},
	)

	sessionsStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voting_sessions_started_total",
			Help: "Total number of session start attempts.",
		},
		[]string{"service", "result"},
	)

	sessionsClosedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voting_sessions_closed_total",
			Help: "Total number of expired sessions closed on read.",
		},
		[]string{"service"},
	)

	votesCastTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voting_votes_cast_total",
			Help: "Total number of vote attempts by outcome.",
		},
		[]string{"service", "result"},
	)
)

// Exported vectors are curried with the service label; record through these.
var (
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	AuthRegistrationsTotal     *prometheus.CounterVec
	AuthLoginsTotal            *prometheus.CounterVec
	TokensIssuedTotal          *prometheus.CounterVec
	TopicsCreatedTotal         *prometheus.CounterVec
	SessionsStartedTotal       *prometheus.CounterVec
	SessionsClosedTotal        *prometheus.CounterVec
	VotesCastTotal             *prometheus.CounterVec
)

func init() { curry("voting") }

func curry(serviceName string) {
	l := prometheus.Labels{"service": serviceName}
	HTTPRequestsTotal = httpRequestsTotal.MustCurryWith(l)
	HTTPRequestDurationSeconds = httpRequestDurationSeconds.MustCurryWith(l).(*prometheus.HistogramVec)
	AuthRegistrationsTotal = authRegistrationsTotal.MustCurryWith(l)
	AuthLoginsTotal = authLoginsTotal.MustCurryWith(l)
	TokensIssuedTotal = tokensIssuedTotal.MustCurryWith(l)
	TopicsCreatedTotal = topicsCreatedTotal.MustCurryWith(l)
	SessionsStartedTotal = sessionsStartedTotal.MustCurryWith(l)
	SessionsClosedTotal = sessionsClosedTotal.MustCurryWith(l)
	VotesCastTotal = votesCastTotal.MustCurryWith(l)
}

// MustRegister binds the service label and registers every collector with the
// default registry. Call once at startup.
func MustRegister(serviceName string) {
	curry(serviceName)

	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		authRegistrationsTotal,
		authLoginsTotal,
		tokensIssuedTotal,
		topicsCreatedTotal,
		sessionsStartedTotal,
		sessionsClosedTotal,
		votesCastTotal,
	)
}
