// Package daemon wires the worker supervisor, history store, and log stream
// into a single-instance background service. A file lock under the state
// directory prevents two daemons from fighting over the same worker and
// socket.
package daemon
