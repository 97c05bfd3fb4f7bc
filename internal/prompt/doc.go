// Package prompt compiles a conversation session into the message set
// sent to the model: the system message assembled from mode configuration
// and the tool catalogue, and the resolved user message carrying
// attachment context blocks, an environment snapshot, and the wrapped
// query.
package prompt
