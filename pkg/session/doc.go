/*
Package session manages several skill trees over one shared store.

Each tree id gets its own key namespace and its own lock. Access is serialized
per tree with reference-counted in-process locks, and optionally across
replicas with a ports.DistributedLocker such as the Redis adapter's Locker.
*/
package session
