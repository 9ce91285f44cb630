// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

/*
Package rp is the relying-party library a web client delegates protocol work
to.  It registers public clients with a provider, builds implicit flow
authentication requests and validates the provider's redirect responses.

Primary types provided by the package

* Client: discovers providers (OpenID Connect Discovery 1.0), registers
clients (RFC 7591 Dynamic Client Registration), creates authentication request
URIs and validates authentication responses.  Signature, issuer, audience and
expiry checks of id_tokens are done by github.com/coreos/go-oidc/v3.

* Registration: a client's registration with one provider.

* Session: the result of a validated authentication response: the id_token,
its claims and the access_token.

* TestProvider: a local provider supporting discovery, dynamic registration and
the implicit flow, which makes writing tests much easier.

Every authentication request the Client creates is recorded (state, nonce,
redirect URI) in the "oidc.rp.requests" namespace of the storage.Backend given
to NewClient.  ValidateResponse consumes that record, so a response can only be
validated once.
*/
package rp
