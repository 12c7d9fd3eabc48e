// Package callbackqueue defines the CallbackQueue contract that
// Subscription and TimerManager schedule work onto, plus a reference
// DefaultCallbackQueue implementation. Neither Subscription nor
// TimerManager ever drains a queue themselves; draining is always done
// by a user-owned thread, mirroring ros::spin() over the global queue.
package callbackqueue
