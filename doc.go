/*
Package main is an application package for the Alloy Agency Service. The
agency hosts credential lifecycle actors, steward, issuer, prover and
verifier, and runs the protocols between them over authcrypted pairwise
channels and a shared ledger.

You can use the agency and related Go packages roughly for three purposes:

1. As a service agency that serves multiple actors at the same time over
its HTTP transport. The served actors answer onboarding handshakes and
receive protocol messages to their typed inboxes.

2. As a CLI tool for setting up wallets and root identities, onboarding
peers, registering schemas and credential definitions to the ledger, and
driving full issuance and proof flows.

3. As a library to build issuer, prover and verifier services on. The
protocol packages expose each leg of the sub-protocols as plain Go calls.

# Sub-packages

alloy-agent is structured to the following sub-packages:

	agent    includes the actor, wallet, ledger and transport packages
	cmd      the cobra command tree of the CLI
	cmds     the commands the CLI and other tools execute
	enclave  implements a secure enclave for wallet keys and master secrets
	protocol includes the onboarding, registry, issuance and proof protocols
	server   implements the http transport of the agency
*/
package main
