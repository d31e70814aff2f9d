package telemetry

import "go.opentelemetry.io/otel/metric"

// Metrics holds every canoe metric instrument.
type Metrics struct {
	InstancesActive  metric.Int64UpDownCounter
	InstancesStarted metric.Int64Counter
	InstancesEnded   metric.Int64Counter
	ScenarioErrors   metric.Int64Counter
	TriggersSkipped  metric.Int64Counter
	MethodDuration   metric.Float64Histogram
	MethodErrors     metric.Int64Counter
}

// NewMetrics creates every instrument from meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.InstancesActive, err = meter.Int64UpDownCounter("canoe.instances.active",
		metric.WithDescription("Number of currently live scenario instances"),
	)
	if err != nil {
		return nil, err
	}

	m.InstancesStarted, err = meter.Int64Counter("canoe.instances.started",
		metric.WithDescription("Total scenario instances started"),
	)
	if err != nil {
		return nil, err
	}

	m.InstancesEnded, err = meter.Int64Counter("canoe.instances.ended",
		metric.WithDescription("Total scenario instances ended (success, fall-through, or error)"),
	)
	if err != nil {
		return nil, err
	}

	m.ScenarioErrors, err = meter.Int64Counter("canoe.scenario.errors",
		metric.WithDescription("Total unhandled scenario errors"),
	)
	if err != nil {
		return nil, err
	}

	m.TriggersSkipped, err = meter.Int64Counter("canoe.triggers.skipped",
		metric.WithDescription("Triggering messages skipped because an instance was already live for that chat"),
	)
	if err != nil {
		return nil, err
	}

	m.MethodDuration, err = meter.Float64Histogram("canoe.method.duration",
		metric.WithDescription("RPC method execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.MethodErrors, err = meter.Int64Counter("canoe.method.errors",
		metric.WithDescription("RPC method execution errors"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
