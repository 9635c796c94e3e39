// Package webhook serves the LINE callback endpoint and a small read API.
//
// Each delivery is signature-checked as a whole, then every event in it is
// handled on its own: a storage failure for one event is logged with that
// event's correlation id and produces no reply, while the endpoint still
// answers 200 so LINE does not redeliver the batch.
package webhook
