// Package transport owns the sink handles of a root logger and mediates
// credential rotation without losing in-flight records.
//
// A sink is any destination with write, drain and close semantics. Three
// implementations ship with the SDK: a synchronous console sink, a batching
// CloudWatch Logs sink built on aws-sdk-go-v2, and an asynchronous Kafka
// sink built on segmentio/kafka-go.
//
// Rotation follows a three-step protocol whose order matters: the new cloud
// sink is attached while the old one is still live (both receive writes
// briefly), the old sink is then asked to drain asynchronously, and only
// after the drain completes is it detached and closed. Each managed sink
// moves through Active, Draining and Closed states. Failures anywhere in
// the protocol are reported on the diagnostic channel and never reach the
// logging caller.
//
// The console sink is independent of credential state: it is created once at
// logger construction and never participates in rotation. The same holds for
// the Kafka sink, which authenticates against brokers rather than the cloud
// credential endpoint.
package transport
