package options

import "testing"

func TestApplyStartsFromDefaults(t *testing.T) {
	o := Apply()
	want := NewDefaultOptions()
	if o != want {
		t.Fatalf("Apply() with no options = %+v, want defaults %+v", o, want)
	}
}

func TestWithCompactionThresholdRejectsOutOfRange(t *testing.T) {
	o := Apply(WithCompactionThreshold(MinCompactionThreshold - 1))
	if o.CompactionThreshold != DefaultCompactionThreshold {
		t.Fatalf("out-of-range threshold was applied: got %d", o.CompactionThreshold)
	}

	o = Apply(WithCompactionThreshold(MaxCompactionThreshold + 1))
	if o.CompactionThreshold != DefaultCompactionThreshold {
		t.Fatalf("out-of-range threshold was applied: got %d", o.CompactionThreshold)
	}

	const valid = MinCompactionThreshold * 2
	o = Apply(WithCompactionThreshold(valid))
	if o.CompactionThreshold != valid {
		t.Fatalf("CompactionThreshold = %d, want %d", o.CompactionThreshold, valid)
	}
}

func TestWithDataDirIgnoresBlank(t *testing.T) {
	o := Apply(WithDataDir("   "))
	if o.DataDir != DefaultDataDir {
		t.Fatalf("blank data dir was applied: got %q", o.DataDir)
	}

	o = Apply(WithDataDir("/tmp/store"))
	if o.DataDir != "/tmp/store" {
		t.Fatalf("DataDir = %q, want /tmp/store", o.DataDir)
	}
}

func TestObservabilityOptionsDefaultOff(t *testing.T) {
	o := NewDefaultOptions()
	if o.Observability.MetricsAddr != "" || o.Observability.TracingEnabled ||
		o.Observability.EventBusURL != "" || o.Observability.AdminWSAddr != "" ||
		o.Observability.WatchdogEnabled {
		t.Fatalf("expected all observability features off by default, got %+v", o.Observability)
	}
}

func TestWithTracingEnablesAndDisables(t *testing.T) {
	o := Apply(WithTracing(true))
	if !o.Observability.TracingEnabled {
		t.Fatal("expected tracing enabled")
	}
	o = Apply(WithTracing(true), WithTracing(false))
	if o.Observability.TracingEnabled {
		t.Fatal("expected tracing disabled after later option")
	}
}
