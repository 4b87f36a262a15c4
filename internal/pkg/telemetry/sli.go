package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricForecastAge  = "weather.forecast_age_seconds"
	MetricSceneLatency = "satellite.scene_latency_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricFieldsOnboarded    = "business.fields_onboarded"
	MetricSchedulesConfirmed = "business.schedules_confirmed"
)
