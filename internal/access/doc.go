// Package access answers the two gating questions the dispatcher asks before
// touching a queue: may this actor run an administrative action in this scope
// (Gate), and is the bot registered and switched on in this scope (Sessions).
//
// Grants are provisioned out-of-band by the admin CLI; this package only reads
// them. Scope session state is written when an authorized actor sends start or
// end.
package access
