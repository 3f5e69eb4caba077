/*
Package observability turns dialogue lifecycle events into Prometheus metrics and structured logs.

Both helpers return domain.LifecycleHooks, so they compose with game-side hooks via Merge:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
	director := dialoguetree.New(controller, dialoguetree.WithHooks(hooks))
*/
package observability
