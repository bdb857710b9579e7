package querymon

// UpdateListener is notified of changes to the monitored query set.
// Notifications are delivered synchronously from the mutating call,
// after the index change has been committed, in registration order.
// A panicking listener is recovered and logged; it never aborts the
// operation or starves later listeners.
type UpdateListener interface {
	// AfterUpdate is called once per committed batch during Register,
	// with the queries of that batch.
	AfterUpdate(queries []MonitorQuery)

	// AfterDelete is called after DeleteByID tombstones the given ids.
	AfterDelete(ids []string)

	// AfterClear is called after Clear tombstones every query.
	AfterClear()

	// OnPurge is called after a purge cycle completes successfully.
	OnPurge()

	// OnPurgeError is called when a scheduled purge cycle fails.
	// Manual PurgeCache calls return their error instead.
	OnPurgeError(err error)
}

// notifyListeners runs fn against each registered listener, isolating
// panics so one faulty listener cannot disturb the others.
func (m *Monitor) notifyListeners(fn func(UpdateListener)) {
	for _, l := range m.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("update listener panicked", "panic", r)
				}
			}()
			fn(l)
		}()
	}
}
