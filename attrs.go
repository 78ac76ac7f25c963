package tracer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys shared by the Sampler and the Facade. uid/cmd/rot are
// read by the Sampler to make its decision; err is set by EndSpan.
const (
	attrUID = attribute.Key("uid")
	attrCmd = attribute.Key("cmd")
	attrRot = attribute.Key("rot")
	attrErr = attribute.Key("err")
)
