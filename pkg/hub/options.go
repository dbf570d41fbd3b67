package hub

// Option configures a subscription.
type Option func(*subscribeConfig)

type subscribeConfig struct {
	namespace string
	context   any
}

// WithNamespace tags the subscription so that Unsubscribe(ns) removes it.
func WithNamespace(ns string) Option {
	return func(c *subscribeConfig) {
		c.namespace = ns
	}
}

// WithContext attaches a value handed back to the handler as Info.Context.
// Components use it to carry their receiver.
func WithContext(v any) Option {
	return func(c *subscribeConfig) {
		c.context = v
	}
}
