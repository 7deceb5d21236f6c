package logger

import "github.com/sirupsen/logrus"

// Context is a set of log fields that travels with a unit of work, such as one document load.
type Context logrus.Fields

// Fields returns the context as logrus fields.
func (c Context) Fields() logrus.Fields {
	return logrus.Fields(c)
}

// Entry returns a logrus entry carrying the context.
func (c Context) Entry() *logrus.Entry {
	return logrus.WithFields(c.Fields())
}

// MergeContexts returns a new merged Context object from the inputs, prefering later inputs.
func MergeContexts(xs ...Context) Context {
	ys := Context{}
	for _, x := range xs {
		for k, v := range x {
			ys[k] = v
		}
	}
	return ys
}
