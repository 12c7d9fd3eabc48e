// Package rosnode holds the small pieces of node identity that
// Subscription needs but does not own itself: self-URI filtering for
// pub_update, and the node/subscription configuration file shape.
package rosnode
