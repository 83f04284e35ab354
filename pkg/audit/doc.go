// Package audit persists one record per pipeline run so that governance
// decisions can be reviewed after the fact.
//
// Records carry the decision telemetry (mode, output state, risk energy,
// evidence score, policy reasons) and a hash of the user text rather than
// the text itself. Storage backends are pluggable; SQLite is the default
// and an in-memory backend exists for tests and ephemeral deployments.
// A retention pruner deletes records by age and by total count on a cron
// schedule.
package audit
