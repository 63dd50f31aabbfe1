/*
Package protocol is a package for the credential lifecycle protocol
processors. Protocol processors implement the actual protocol state
transitions between the actors: onboarding, schema and cred def
registration, credential issuance and proof exchange. The lifecycle
package drives all of them end to end in the order a credential lives
through them.
*/
package protocol
