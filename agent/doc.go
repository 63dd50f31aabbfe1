/*
Package agent holds the packages an actor is built from. The actor.Actor
is the most important abstraction of the package. Other packages comm,
endp, sec, ssi, etc. offer specific services for the actor to be able to
run its protocols: a wallet, a ledger connection, authcrypted pairwise
pipes and typed protocol inboxes.

The agent package is empty itself. All the functionality is inside
sub-packages. Summary of the packages:

	actor      the four lifecycle roles and their shared runtime
	async      future values over the indy wrapper's channels
	comm       communication receivers, packets, send helpers
	endp       agent endpoint services to parse and calculate URLs
	managed    managed wallet interface
	pool       shared ledger pool connection
	psm        protocol state journal
	sec        secure pipe for pairwise transfers
	service    namespace for the common service.Addr aka agent endpoint
	ssi        indy specifics: DID, agent, ledger, schema, wallet, future
	storage    the agent's persistent non-wallet state
	utils      helpers for version, settings, registers and nonces
*/
package agent
